// Package inspect implements the optional, opt-in debug/introspection
// surface over the scheduler and heap: a read-only Connect+gRPC
// service mirroring the teacher's server/inspect_service.go and
// server/browse_service.go introspection pattern, adapted from "browse
// one VM's object graph over RPC" to "browse one run's task table and
// heap counters over RPC." Never reached from the interpreter's hot
// path — every request reads a snapshot the scheduler's own loop
// already published.
package inspect

import (
	"context"
	"fmt"
	"log"
	"net/http"

	connectrpc "connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/quillrt/quill/internal/scheduler"
)

const snapshotProcedure = "/quill.inspect.v1.InspectionService/Snapshot"

// NewHandler returns an http.Handler serving the Connect protocol
// (and, transparently, gRPC and gRPC-Web, per connect-go's own
// protocol negotiation) for sched's Snapshot RPC. It parses and logs
// the embedded schema once, so a drifted inspect.proto fails loudly at
// startup instead of silently at request time.
func NewHandler(sched *scheduler.Scheduler) (http.Handler, error) {
	fd, err := loadSchema()
	if err != nil {
		return nil, err
	}
	log.Printf("inspect: serving %v", methodNames(fd))

	mux := http.NewServeMux()
	handler := connectrpc.NewUnaryHandler(
		snapshotProcedure,
		func(ctx context.Context, req *connectrpc.Request[structpb.Struct]) (*connectrpc.Response[structpb.Struct], error) {
			snap, snapErr := snapshotStruct(sched)
			if snapErr != nil {
				return nil, connectrpc.NewError(connectrpc.CodeInternal, fmt.Errorf("building snapshot: %w", snapErr))
			}
			return connectrpc.NewResponse(snap), nil
		},
	)
	mux.Handle(snapshotProcedure, handler)
	return mux, nil
}
