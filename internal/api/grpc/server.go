package grpcapi

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/service/buttons"
	"operator-button-service/internal/service/ingress"
	"operator-button-service/internal/service/operator"
)

// Server feeds streamed button snapshots into the operator registry.
type Server struct {
	pusher          ingress.Pusher
	defaultOperator string
	logger          zerolog.Logger
}

// Register adds the button service to g.
func Register(g *grpc.Server, pusher ingress.Pusher, defaultOperator string) *Server {
	s := &Server{
		pusher:          pusher,
		defaultOperator: defaultOperator,
		logger:          logging.WithComponent("grpc"),
	}
	g.RegisterService(&ServiceDesc, s)
	return s
}

// StreamButtons reads snapshots until the client closes its side, then
// acknowledges with the operator and the number of snapshots received.
func (s *Server) StreamButtons(stream ButtonService_StreamButtonsServer) error {
	ctx := stream.Context()

	var (
		operatorId string
		received   int
	)
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		op, snapshot, err := snapshotFromStruct(msg, s.defaultOperator)
		if err != nil {
			return status.Error(codes.InvalidArgument, err.Error())
		}
		operatorId = op

		if err := s.pusher.Push(ctx, operatorId, ingress.SourceGRPC, snapshot); err != nil {
			switch {
			case errors.Is(err, operator.ErrRegistryClosed):
				return status.Error(codes.Unavailable, err.Error())
			case errors.Is(err, operator.ErrTooManyOperators):
				return status.Error(codes.ResourceExhausted, err.Error())
			}
			return status.FromContextError(err).Err()
		}
		received++
	}

	s.logger.Debug().
		Str("operatorId", operatorId).
		Int("received", received).
		Msg("Button stream completed")

	return stream.SendAndClose(&structpb.Struct{Fields: map[string]*structpb.Value{
		"operator": structpb.NewStringValue(operatorId),
		"received": structpb.NewNumberValue(float64(received)),
	}})
}

// snapshotFromStruct reads {operator, btn1, btn2} or {operator, mode}.
func snapshotFromStruct(msg *structpb.Struct, defaultOperator string) (string, buttons.Snapshot, error) {
	fields := msg.GetFields()

	operatorId := defaultOperator
	if v, ok := fields["operator"]; ok {
		sv, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return "", buttons.Snapshot{}, fmt.Errorf("%w: operator must be a string", ingress.ErrMalformedMessage)
		}
		if sv.StringValue != "" {
			operatorId = sv.StringValue
		}
	}

	if v, ok := fields["mode"]; ok {
		s, err := ingress.ParseMode(v.GetStringValue())
		return operatorId, s, err
	}

	b1, err := boolField(fields, "btn1")
	if err != nil {
		return "", buttons.Snapshot{}, err
	}
	b2, err := boolField(fields, "btn2")
	if err != nil {
		return "", buttons.Snapshot{}, err
	}
	return operatorId, buttons.Snapshot{Button1: b1, Button2: b2}, nil
}

// missing fields read as released
func boolField(fields map[string]*structpb.Value, name string) (bool, error) {
	v, ok := fields[name]
	if !ok {
		return false, nil
	}
	bv, isBool := v.GetKind().(*structpb.Value_BoolValue)
	if !isBool {
		return false, fmt.Errorf("%w: %s must be a bool", ingress.ErrMalformedMessage, name)
	}
	return bv.BoolValue, nil
}
