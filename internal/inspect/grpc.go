package inspect

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServeGRPC stands up a bare grpc.Server on lis exposing health
// checking and server reflection for the inspection service, so a
// generic gRPC client (grpcurl, grpc-health-probe) can discover it
// without this repo shipping protoc-generated bindings of its own —
// the Snapshot RPC's actual payload is served over Connect (see
// server.go), which speaks the gRPC wire protocol natively when
// mounted on an HTTP/2 listener; this grpc.Server is the narrower
// "is it alive, what does it expose" surface google.golang.org/grpc's
// own stdlib-adjacent packages give us without custom code generation.
func ServeGRPC(lis net.Listener) error {
	s := grpc.NewServer()

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("quill.inspect.v1.InspectionService", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthSrv)

	reflection.Register(s)

	return s.Serve(lis)
}
