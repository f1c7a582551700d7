package ingress

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/observability/metrics"
	"operator-button-service/internal/service/buttons"
)

const (
	SourceHTTP  = "http"
	SourceUDP   = "udp"
	SourceGRPC  = "grpc"
	SourceKafka = "kafka"

	maxDatagram = 1024
)

// Pusher accepts snapshots for an operator. Implemented by operator.Registry.
type Pusher interface {
	Push(ctx context.Context, operatorId, source string, s buttons.Snapshot) error
}

// UDPListener reads device messages from a datagram socket. Each sender
// address is its own operator ("udp:<ip>").
type UDPListener struct {
	conn    net.PacketConn
	pusher  Pusher
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// ListenUDP binds addr and returns a listener ready to Serve.
func ListenUDP(addr string, pusher Pusher, m *metrics.Metrics) (*UDPListener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	return NewUDPListener(conn, pusher, m), nil
}

// NewUDPListener wraps an already bound connection.
func NewUDPListener(conn net.PacketConn, pusher Pusher, m *metrics.Metrics) *UDPListener {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &UDPListener{
		conn:    conn,
		pusher:  pusher,
		metrics: m,
		logger:  logging.WithComponent("udp"),
	}
}

// Addr returns the bound local address.
func (l *UDPListener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve reads datagrams until ctx is cancelled or the connection fails.
func (l *UDPListener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.conn.Close()
	}()

	l.logger.Info().Str("addr", l.conn.LocalAddr().String()).Msg("UDP listener started")

	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		l.handle(ctx, addr, string(buf[:n]))
	}
}

func (l *UDPListener) handle(ctx context.Context, addr net.Addr, payload string) {
	operatorId := udpOperator(addr)

	// a datagram may carry several newline separated messages
	for _, msg := range strings.Split(payload, "\n") {
		s, ok, err := ParseMessage(msg)
		if !ok {
			continue
		}
		if err != nil {
			l.metrics.RecordParseError(SourceUDP)
			lg := logging.WithSource(operatorId, SourceUDP)
			lg.Warn().Err(err).Msg("Dropping device message")
			continue
		}
		if err := l.pusher.Push(ctx, operatorId, SourceUDP, s); err != nil {
			lg := logging.WithSource(operatorId, SourceUDP)
			lg.Error().Err(err).Msg("Failed to push snapshot")
			return
		}
	}
}

func udpOperator(addr net.Addr) string {
	if ua, ok := addr.(*net.UDPAddr); ok {
		return "udp:" + ua.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "udp:" + addr.String()
	}
	return "udp:" + host
}
