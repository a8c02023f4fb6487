package link

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-zeromq/zmq4"
	"github.com/rs/zerolog"

	"github.com/robokit/armlink/internal/observability"
)

// Client is the connection lifecycle state machine. It owns the dealer and
// subscriber sockets of one controller link and runs the telemetry receive
// loop while connected.
type Client struct {
	log     zerolog.Logger
	tr      Transport
	emitter *emitter

	mu         sync.Mutex
	status     Status
	cfg        Config
	dealer     Socket
	sub        Socket
	loopCancel context.CancelFunc
	loopDone   chan struct{}

	// connected is the one flag shared with the receive loop; the loop
	// exits silently once it observes a caller-initiated clear.
	connected atomic.Bool
	enabled   atomic.Bool
	cmdSeq    atomic.Uint32
}

func NewClient(log zerolog.Logger, tr Transport) *Client {
	return &Client{
		log:     log,
		tr:      tr,
		emitter: newEmitter(),
		status:  StatusDisconnected,
	}
}

// Subscribe registers an event channel with the given buffer. A slow
// subscriber loses its oldest buffered events, never the newest.
func (c *Client) Subscribe(buffer int) <-chan Event {
	return c.emitter.subscribe(buffer)
}

func (c *Client) Unsubscribe(ch <-chan Event) {
	c.emitter.unsubscribe(ch)
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Connect runs discovery against the rendezvous endpoint, opens the dealer
// and subscriber sockets, and starts the receive loop. It is a no-op when
// already connecting or connected. A failed attempt surfaces as an error
// plus an error status; retry is caller-driven, never scheduled here.
func (c *Client) Connect(ctx context.Context, cfg Config) error {
	c.mu.Lock()
	if c.status == StatusConnecting || c.status == StatusConnected {
		c.mu.Unlock()
		return nil
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.cfg = cfg
	// A lost link leaves its sockets open for best-effort sends; a fresh
	// connect replaces them, so close them here.
	staleDealer, staleSub := c.dealer, c.sub
	staleCancel := c.loopCancel
	c.dealer, c.sub = nil, nil
	c.loopCancel, c.loopDone = nil, nil
	c.setStatusLocked(StatusConnecting, "")
	c.mu.Unlock()

	if staleCancel != nil {
		staleCancel()
	}
	if staleDealer != nil {
		staleDealer.Close()
	}
	if staleSub != nil {
		staleSub.Close()
	}

	c.log.Info().Str("rendezvous", cfg.rendezvousAddr()).Msg("connecting")
	dealer, sub, err := c.openSockets(ctx, cfg)
	if err != nil {
		observability.RecordConnect("error")
		c.emitter.publish(Event{Kind: EventError, Err: err.Error()})
		c.mu.Lock()
		c.setStatusLocked(StatusError, err.Error())
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.status != StatusConnecting {
		// Disconnect raced the handshake; drop the fresh sockets.
		c.mu.Unlock()
		dealer.Close()
		sub.Close()
		return nil
	}
	c.dealer = dealer
	c.sub = sub
	c.connected.Store(true)

	loopCtx, cancel := context.WithCancel(context.Background())
	c.loopCancel = cancel
	c.loopDone = make(chan struct{})
	go c.recvLoop(loopCtx, sub, cfg, c.loopDone)

	c.emitter.publish(Event{Kind: EventConnected})
	c.setStatusLocked(StatusConnected, "")
	c.mu.Unlock()

	observability.RecordConnect("ok")
	c.log.Info().Msg("connected")
	return nil
}

func (c *Client) openSockets(ctx context.Context, cfg Config) (Socket, Socket, error) {
	dealerEP, subEP, err := Discover(ctx, c.tr, cfg.rendezvousAddr(), cfg.MessageTimeout)
	if err != nil {
		return nil, nil, err
	}
	c.log.Debug().
		Str("dealer", dealerEP.Addr()).
		Str("sub", subEP.Addr()).
		Msg("endpoints discovered")

	dealer := c.tr.NewDealer(context.Background(), cfg.MessageTimeout)
	if err := dealer.Dial(dealerEP.Addr()); err != nil {
		dealer.Close()
		return nil, nil, fmt.Errorf("%w: dial dealer %s: %v", ErrConnect, dealerEP.Addr(), err)
	}

	sub := c.tr.NewSub(context.Background(), cfg.MessageTimeout)
	if err := sub.SetOption(zmq4.OptionSubscribe, cfg.Topic); err != nil {
		dealer.Close()
		sub.Close()
		return nil, nil, fmt.Errorf("%w: subscribe: %v", ErrConnect, err)
	}
	if err := sub.Dial(subEP.Addr()); err != nil {
		dealer.Close()
		sub.Close()
		return nil, nil, fmt.Errorf("%w: dial sub %s: %v", ErrConnect, subEP.Addr(), err)
	}
	return dealer, sub, nil
}

// Disconnect stops the receive loop, closes both sockets, and reports the
// disconnect. It is idempotent and safe from any state.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.status == StatusDisconnected && c.dealer == nil && c.sub == nil && c.loopDone == nil {
		c.mu.Unlock()
		return
	}
	// Clear the flag before cancelling so the loop exits silently even if
	// it is already past its ctx check.
	c.connected.Store(false)
	cancel := c.loopCancel
	done := c.loopDone
	dealer := c.dealer
	sub := c.sub
	c.loopCancel = nil
	c.loopDone = nil
	c.dealer = nil
	c.sub = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	// Close before waiting: a read blocked on a quiet wire only wakes on
	// socket close.
	if dealer != nil {
		dealer.Close()
	}
	if sub != nil {
		sub.Close()
	}
	if done != nil {
		<-done
	}

	c.emitter.publish(Event{Kind: EventDisconnected})
	c.mu.Lock()
	c.setStatusLocked(StatusDisconnected, "")
	c.mu.Unlock()
	c.log.Info().Msg("disconnected")
}

// Reconnect is Disconnect followed by Connect with the stored config.
func (c *Client) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()
	c.Disconnect()
	return c.Connect(ctx, cfg)
}

// Close disconnects and closes all subscriber channels.
func (c *Client) Close() {
	c.Disconnect()
	c.emitter.close()
}

// setStatusLocked transitions the lifecycle state and publishes the status
// event. Caller holds c.mu.
func (c *Client) setStatusLocked(s Status, errMsg string) {
	c.status = s
	c.emitter.publish(Event{Kind: EventStatusChanged, Status: s, Err: errMsg})
}
