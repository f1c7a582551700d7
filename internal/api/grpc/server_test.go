package grpcapi

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"operator-button-service/internal/service/buttons"
	"operator-button-service/internal/service/ingress"
	"operator-button-service/internal/service/operator"
)

type push struct {
	operatorId string
	snapshot   buttons.Snapshot
}

type fakePusher struct {
	mu     sync.Mutex
	pushes []push
	err    error
}

func (p *fakePusher) Push(ctx context.Context, operatorId, source string, s buttons.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushes = append(p.pushes, push{operatorId, s})
	return nil
}

func TestSnapshotFromStruct(t *testing.T) {
	tests := []struct {
		name     string
		msg      *structpb.Struct
		operator string
		want     buttons.Snapshot
		wantErr  error
	}{
		{"buttons", SnapshotMessage("2", true, false), "2", buttons.Snapshot{Button1: true}, nil},
		{"mode", ModeMessage("3", "both"), "3", buttons.Snapshot{Button1: true, Button2: true}, nil},
		{"default operator", &structpb.Struct{Fields: map[string]*structpb.Value{
			"btn2": structpb.NewBoolValue(true),
		}}, "0", buttons.Snapshot{Button2: true}, nil},
		{"empty message", &structpb.Struct{}, "0", buttons.Snapshot{}, nil},
		{"unknown mode", ModeMessage("1", "all"), "1", buttons.Snapshot{}, ingress.ErrUnknownMode},
		{"non bool button", &structpb.Struct{Fields: map[string]*structpb.Value{
			"btn1": structpb.NewStringValue("on"),
		}}, "", buttons.Snapshot{}, ingress.ErrMalformedMessage},
		{"non string operator", &structpb.Struct{Fields: map[string]*structpb.Value{
			"operator": structpb.NewNumberValue(4),
		}}, "", buttons.Snapshot{}, ingress.ErrMalformedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, s, err := snapshotFromStruct(tt.msg, "0")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if err != nil {
				return
			}
			if op != tt.operator {
				t.Errorf("expected operator %s, got %s", tt.operator, op)
			}
			if s != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, s)
			}
		})
	}
}

func startServer(t *testing.T, pusher ingress.Pusher) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	g := grpc.NewServer()
	Register(g, pusher, "0")
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamButtons(t *testing.T) {
	pusher := &fakePusher{}
	conn := startServer(t, pusher)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := StreamButtons(ctx, conn)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	msgs := []*structpb.Struct{
		SnapshotMessage("op-1", true, false),
		SnapshotMessage("op-1", true, true),
		ModeMessage("op-1", "none"),
	}
	for _, m := range msgs {
		if err := stream.Send(m); err != nil {
			t.Fatalf("failed to send: %v", err)
		}
	}

	ack, err := stream.CloseAndRecv()
	if err != nil {
		t.Fatalf("failed to receive ack: %v", err)
	}
	if got := ack.GetFields()["operator"].GetStringValue(); got != "op-1" {
		t.Errorf("expected ack operator 'op-1', got %s", got)
	}
	if got := ack.GetFields()["received"].GetNumberValue(); got != 3 {
		t.Errorf("expected 3 received, got %v", got)
	}

	want := []buttons.Snapshot{
		{Button1: true},
		{Button1: true, Button2: true},
		{},
	}
	if len(pusher.pushes) != len(want) {
		t.Fatalf("expected %d pushes, got %d", len(want), len(pusher.pushes))
	}
	for i, w := range want {
		if pusher.pushes[i].snapshot != w || pusher.pushes[i].operatorId != "op-1" {
			t.Errorf("push %d: expected %+v for op-1, got %+v", i, w, pusher.pushes[i])
		}
	}
}

func TestStreamButtons_InvalidMessage(t *testing.T) {
	conn := startServer(t, &fakePusher{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := StreamButtons(ctx, conn)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	_ = stream.Send(ModeMessage("op-1", "sideways"))

	_, err = stream.CloseAndRecv()
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestStreamButtons_RegistryClosed(t *testing.T) {
	conn := startServer(t, &fakePusher{err: operator.ErrRegistryClosed})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := StreamButtons(ctx, conn)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	_ = stream.Send(SnapshotMessage("op-1", true, false))

	_, err = stream.CloseAndRecv()
	if status.Code(err) != codes.Unavailable {
		t.Errorf("expected Unavailable, got %v", err)
	}
}

func TestStreamButtons_OperatorLimit(t *testing.T) {
	conn := startServer(t, &fakePusher{err: operator.ErrTooManyOperators})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := StreamButtons(ctx, conn)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	_ = stream.Send(SnapshotMessage("op-new", true, false))

	_, err = stream.CloseAndRecv()
	if status.Code(err) != codes.ResourceExhausted {
		t.Errorf("expected ResourceExhausted, got %v", err)
	}
}
