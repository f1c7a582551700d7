package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the button service.
const ServiceName = "switchboard.ButtonService"

const streamButtonsMethod = "/" + ServiceName + "/StreamButtons"

// ButtonServiceServer is the server API for the button service.
// Messages are google.protobuf.Struct so clients need no generated code.
type ButtonServiceServer interface {
	StreamButtons(ButtonService_StreamButtonsServer) error
}

// ButtonService_StreamButtonsServer is the server side of a StreamButtons call.
type ButtonService_StreamButtonsServer interface {
	SendAndClose(*structpb.Struct) error
	Recv() (*structpb.Struct, error)
	grpc.ServerStream
}

type streamButtonsServer struct {
	grpc.ServerStream
}

func (x *streamButtonsServer) SendAndClose(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func (x *streamButtonsServer) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func streamButtonsHandler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(ButtonServiceServer).StreamButtons(&streamButtonsServer{stream})
}

// ServiceDesc describes the button service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ButtonServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamButtons",
			Handler:       streamButtonsHandler,
			ClientStreams: true,
		},
	},
	Metadata: "switchboard/buttons.proto",
}

// ButtonService_StreamButtonsClient is the client side of a StreamButtons call.
type ButtonService_StreamButtonsClient interface {
	Send(*structpb.Struct) error
	CloseAndRecv() (*structpb.Struct, error)
	grpc.ClientStream
}

type streamButtonsClient struct {
	grpc.ClientStream
}

func (x *streamButtonsClient) Send(m *structpb.Struct) error {
	return x.ClientStream.SendMsg(m)
}

func (x *streamButtonsClient) CloseAndRecv() (*structpb.Struct, error) {
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// StreamButtons opens a client stream on cc.
func StreamButtons(ctx context.Context, cc grpc.ClientConnInterface, opts ...grpc.CallOption) (ButtonService_StreamButtonsClient, error) {
	stream, err := cc.NewStream(ctx, &ServiceDesc.Streams[0], streamButtonsMethod, opts...)
	if err != nil {
		return nil, err
	}
	return &streamButtonsClient{stream}, nil
}

// SnapshotMessage builds the message for one button snapshot.
func SnapshotMessage(operatorId string, btn1, btn2 bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"operator": structpb.NewStringValue(operatorId),
		"btn1":     structpb.NewBoolValue(btn1),
		"btn2":     structpb.NewBoolValue(btn2),
	}}
}

// ModeMessage builds the message for a synthetic mode (btn1, btn2, both, none).
func ModeMessage(operatorId, mode string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"operator": structpb.NewStringValue(operatorId),
		"mode":     structpb.NewStringValue(mode),
	}}
}
