package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"docustream.dev/docustream/model"
)

// ServiceName is the fully qualified name of the Word service.
//
// Streaming methods exchange model.Request/model.Response encoded with the
// CBOR codec; Inspect uses protobuf well-known wrapper types, so no protoc
// step is needed.
const ServiceName = "docustream.v1.Word"

// WordServer is the server API for the Word service.
type WordServer interface {
	Apply(DocumentServerStream) error
	Convert(DocumentServerStream) error
	Inspect(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
}

// DocumentServerStream is the server side of Apply and Convert.
type DocumentServerStream interface {
	Send(*model.Response) error
	Recv() (*model.Request, error)
	grpc.ServerStream
}

// UnimplementedWordServer can be embedded to have forward compatible implementations.
type UnimplementedWordServer struct{}

func (UnimplementedWordServer) Apply(DocumentServerStream) error {
	return status.Error(codes.Unimplemented, "method Apply not implemented")
}
func (UnimplementedWordServer) Convert(DocumentServerStream) error {
	return status.Error(codes.Unimplemented, "method Convert not implemented")
}
func (UnimplementedWordServer) Inspect(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Inspect not implemented")
}

// RegisterWordServer registers the Word service on a gRPC server.
func RegisterWordServer(s grpc.ServiceRegistrar, srv WordServer) {
	s.RegisterService(&Word_ServiceDesc, srv)
}

type documentServerStream struct{ grpc.ServerStream }

func (x *documentServerStream) Send(m *model.Response) error { return x.ServerStream.SendMsg(m) }

func (x *documentServerStream) Recv() (*model.Request, error) {
	var raw rawRequest
	if err := x.ServerStream.RecvMsg(&raw); err != nil {
		return nil, err
	}
	return decodeRequest(raw)
}

// WordClient is the client API for the Word service.
type WordClient interface {
	Apply(ctx context.Context, opts ...grpc.CallOption) (DocumentClientStream, error)
	Convert(ctx context.Context, opts ...grpc.CallOption) (DocumentClientStream, error)
	Inspect(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

// DocumentClientStream is the client side of Apply and Convert.
type DocumentClientStream interface {
	Send(*model.Request) error
	Recv() (*model.Response, error)
	grpc.ClientStream
}

type wordClient struct{ cc grpc.ClientConnInterface }

func NewWordClient(cc grpc.ClientConnInterface) WordClient { return &wordClient{cc: cc} }

func (c *wordClient) Apply(ctx context.Context, opts ...grpc.CallOption) (DocumentClientStream, error) {
	return c.open(ctx, 0, "/"+ServiceName+"/Apply", opts)
}

func (c *wordClient) Convert(ctx context.Context, opts ...grpc.CallOption) (DocumentClientStream, error) {
	return c.open(ctx, 1, "/"+ServiceName+"/Convert", opts)
}

func (c *wordClient) open(ctx context.Context, desc int, method string, opts []grpc.CallOption) (DocumentClientStream, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &Word_ServiceDesc.Streams[desc], method, opts...)
	if err != nil {
		return nil, err
	}
	return &documentClientStream{stream}, nil
}

func (c *wordClient) Inspect(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/Inspect", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type documentClientStream struct{ grpc.ClientStream }

func (x *documentClientStream) Send(m *model.Request) error { return x.ClientStream.SendMsg(m) }

func (x *documentClientStream) Recv() (*model.Response, error) {
	m := new(model.Response)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func _Word_Apply_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(WordServer).Apply(&documentServerStream{stream})
}

func _Word_Convert_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(WordServer).Convert(&documentServerStream{stream})
}

func _Word_Inspect_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WordServer).Inspect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Inspect"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(WordServer).Inspect(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Word_ServiceDesc is the grpc.ServiceDesc for the Word service.
var Word_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WordServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Inspect", Handler: _Word_Inspect_Handler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Apply", Handler: _Word_Apply_Handler, ServerStreams: true, ClientStreams: true},
		{StreamName: "Convert", Handler: _Word_Convert_Handler, ServerStreams: true, ClientStreams: true},
	},
	Metadata: "docustream/v1/word",
}
