package inspect

import (
	_ "embed"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

//go:embed inspect.proto
var schemaSource string

// loadSchema parses the embedded schema with protoparse — the way
// `gowrap/introspect.go`'s native-module signature discovery inspects
// a package's shape without a prior codegen step — and returns its file
// descriptor, from which methodNames lists the declared RPC methods for
// the startup diagnostic log line. The wire types served over Connect are
// google.golang.org/protobuf's own well-known `structpb.Struct`, not a
// dynamic message built from this descriptor: jhump/protoreflect's
// role here is schema documentation and validation at process start,
// catching a drifted inspect.proto before it ever reaches a client.
func loadSchema() (*desc.FileDescriptor, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			"inspect.proto": schemaSource,
		}),
	}
	fds, err := parser.ParseFiles("inspect.proto")
	if err != nil {
		return nil, fmt.Errorf("inspect: parsing embedded schema: %w", err)
	}
	return fds[0], nil
}

// methodNames returns every RPC method declared on fd's first service,
// in declaration order.
func methodNames(fd *desc.FileDescriptor) []string {
	var names []string
	for _, svc := range fd.GetServices() {
		for _, m := range svc.GetMethods() {
			names = append(names, svc.GetName()+"."+m.GetName())
		}
	}
	return names
}
