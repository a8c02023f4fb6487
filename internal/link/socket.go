package link

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/go-zeromq/zmq4"
)

// Socket is the subset of zmq4.Socket the link uses, narrowed so tests can
// substitute in-memory fakes.
type Socket interface {
	Dial(ep string) error
	Send(m zmq4.Msg) error
	Recv() (zmq4.Msg, error)
	SetOption(name string, value interface{}) error
	Close() error
}

// Transport builds the three socket roles of one connection: the scoped
// discovery requester, the command dealer, and the telemetry subscriber.
type Transport interface {
	NewReq(ctx context.Context, timeout time.Duration) Socket
	NewDealer(ctx context.Context, timeout time.Duration) Socket
	NewSub(ctx context.Context, timeout time.Duration) Socket
}

type zmqTransport struct{}

// NewZMQTransport returns the production ZeroMQ transport. WithTimeout
// only bounds send-side queueing; reads have no deadline and unblock only
// on socket close, so receive deadlines are enforced by the callers.
func NewZMQTransport() Transport { return zmqTransport{} }

func (zmqTransport) NewReq(ctx context.Context, timeout time.Duration) Socket {
	return zmq4.NewReq(ctx, zmq4.WithTimeout(timeout))
}

func (zmqTransport) NewDealer(ctx context.Context, timeout time.Duration) Socket {
	return zmq4.NewDealer(ctx, zmq4.WithTimeout(timeout))
}

func (zmqTransport) NewSub(ctx context.Context, timeout time.Duration) Socket {
	return zmq4.NewSub(ctx, zmq4.WithTimeout(timeout))
}

// isTimeout reports whether err is a per-message deadline expiry rather
// than a hard transport failure.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
