package cluster

import (
	"context"

	"github.com/dr0pdb/icecanelex/pkg/lexorder"
	"google.golang.org/grpc"
)

const (
	serviceName  = "icecanelex.Coordinator"
	reportMethod = "/" + serviceName + "/Report"
)

// reportServer is the server side of the coordinator service.
type reportServer interface {
	// Report stores the LocalResult of a single peer.
	Report(ctx context.Context, rp *lexorder.Report) (*reportAck, error)
}

var coordinatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*reportServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Report",
			Handler:    reportHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "icecanelex/cluster",
}

func reportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(lexorder.Report)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(reportServer).Report(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: reportMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(reportServer).Report(ctx, req.(*lexorder.Report))
	}
	return interceptor(ctx, in, info, handler)
}

// sendReport is the client side of the coordinator service.
func sendReport(ctx context.Context, conn *grpc.ClientConn, rp *lexorder.Report) (*reportAck, error) {
	out := new(reportAck)
	err := conn.Invoke(ctx, reportMethod, rp, out, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	return out, nil
}
