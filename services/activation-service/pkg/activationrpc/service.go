package activationrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName                = "activation.ActivationService"
	ActivateFullMethodName     = "/activation.ActivationService/Activate"
	ListBindingsFullMethodName = "/activation.ActivationService/ListBindings"
)

type ActivationServiceServer interface {
	Activate(context.Context, *ActivateRequest) (*ActivateResponse, error)
	ListBindings(context.Context, *ListBindingsRequest) (*ListBindingsResponse, error)
}

type ActivationServiceClient interface {
	Activate(ctx context.Context, in *ActivateRequest, opts ...grpc.CallOption) (*ActivateResponse, error)
	ListBindings(ctx context.Context, in *ListBindingsRequest, opts ...grpc.CallOption) (*ListBindingsResponse, error)
}

type activationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewActivationServiceClient(cc grpc.ClientConnInterface) ActivationServiceClient {
	return &activationServiceClient{cc: cc}
}

func (c *activationServiceClient) Activate(ctx context.Context, in *ActivateRequest, opts ...grpc.CallOption) (*ActivateResponse, error) {
	req, err := in.ToStruct()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ActivateFullMethodName, req, out, opts...); err != nil {
		return nil, err
	}
	return ActivateResponseFromStruct(out)
}

func (c *activationServiceClient) ListBindings(ctx context.Context, in *ListBindingsRequest, opts ...grpc.CallOption) (*ListBindingsResponse, error) {
	req, err := in.ToStruct()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListBindingsFullMethodName, req, out, opts...); err != nil {
		return nil, err
	}
	return ListBindingsResponseFromStruct(out)
}

func RegisterActivationServiceServer(s grpc.ServiceRegistrar, srv ActivationServiceServer) {
	s.RegisterService(&ActivationService_ServiceDesc, srv)
}

func encode(v interface {
	ToStruct() (*structpb.Struct, error)
}) (*structpb.Struct, error) {
	out, err := v.ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func _ActivationService_Activate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		resp, err := srv.(ActivationServiceServer).Activate(ctx, ActivateRequestFromStruct(req.(*structpb.Struct)))
		if err != nil {
			return nil, err
		}
		return encode(resp)
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ActivateFullMethodName,
	}
	return interceptor(ctx, in, info, handler)
}

func _ActivationService_ListBindings_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		resp, err := srv.(ActivationServiceServer).ListBindings(ctx, ListBindingsRequestFromStruct(req.(*structpb.Struct)))
		if err != nil {
			return nil, err
		}
		return encode(resp)
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ListBindingsFullMethodName,
	}
	return interceptor(ctx, in, info, handler)
}

var ActivationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ActivationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Activate",
			Handler:    _ActivationService_Activate_Handler,
		},
		{
			MethodName: "ListBindings",
			Handler:    _ActivationService_ListBindings_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "activation.proto",
}
