package link

import (
	"context"
	"fmt"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/robokit/armlink/internal/wire"
)

// discoverToken is the opaque rendezvous request payload. The controller
// only matches it literally.
const discoverToken = "get_ports"

// Discover resolves the dealer and subscriber endpoints from the
// rendezvous endpoint with a single request/reply exchange. The request
// socket is scoped to this call and closed on every path; it is never
// reused for steady-state traffic. The exchange is bounded by timeout: zmq
// reads carry no deadline of their own, so on expiry the socket close is
// what aborts a read stuck on a silent rendezvous.
func Discover(ctx context.Context, tr Transport, rendezvous string, timeout time.Duration) (dealer, sub wire.Endpoint, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := tr.NewReq(ctx, timeout)
	defer req.Close()

	type reply struct {
		dealer, sub wire.Endpoint
		err         error
	}
	ch := make(chan reply, 1)
	go func() {
		var r reply
		r.dealer, r.sub, r.err = exchange(req, rendezvous)
		ch <- r
	}()

	select {
	case r := <-ch:
		return r.dealer, r.sub, r.err
	case <-ctx.Done():
		return wire.Endpoint{}, wire.Endpoint{}, fmt.Errorf("%w: discovery timed out after %s", ErrConnect, timeout)
	}
}

func exchange(req Socket, rendezvous string) (wire.Endpoint, wire.Endpoint, error) {
	if err := req.Dial(rendezvous); err != nil {
		return wire.Endpoint{}, wire.Endpoint{}, fmt.Errorf("%w: dial %s: %v", ErrConnect, rendezvous, err)
	}
	if err := req.Send(zmq4.NewMsgString(discoverToken)); err != nil {
		return wire.Endpoint{}, wire.Endpoint{}, fmt.Errorf("%w: send discovery request: %v", ErrConnect, err)
	}
	msg, err := req.Recv()
	if err != nil {
		return wire.Endpoint{}, wire.Endpoint{}, fmt.Errorf("%w: discovery reply: %v", ErrConnect, err)
	}
	dealer, sub, err := wire.DecodeDiscoveryReply(msg.Bytes())
	if err != nil {
		return wire.Endpoint{}, wire.Endpoint{}, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return dealer, sub, nil
}
