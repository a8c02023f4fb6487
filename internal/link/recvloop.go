package link

import (
	"context"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/robokit/armlink/internal/observability"
	"github.com/robokit/armlink/internal/wire"
)

// recvItem carries one socket read from the reader goroutine to the loop.
type recvItem struct {
	msg zmq4.Msg
	err error
}

// recvLoop is the single telemetry consumer of one connection. A dedicated
// reader goroutine feeds socket reads into a channel so the loop can hold
// the per-message deadline itself: zmq reads carry no deadline of their own
// and only unblock on socket close. The loop runs until the caller
// disconnects, the consecutive-timeout limit is reached, or the transport
// fails hard. Frames are delivered in arrival order.
func (c *Client) recvLoop(ctx context.Context, sock Socket, cfg Config, done chan struct{}) {
	defer close(done)

	frames := make(chan recvItem)
	go func() {
		defer close(frames)
		for {
			msg, err := sock.Recv()
			select {
			case frames <- recvItem{msg: msg, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !isTimeout(err) {
				return
			}
		}
	}()

	timeouts := 0
	timer := time.NewTimer(cfg.MessageTimeout)
	defer timer.Stop()

	for {
		var (
			r        recvItem
			ok       bool
			timedOut bool
		)
		select {
		case <-ctx.Done():
			return
		case r, ok = <-frames:
			if !ok {
				return
			}
		case <-timer.C:
			timedOut = true
		}

		// A caller-initiated disconnect is not a failure; leave without
		// emitting anything.
		if !c.connected.Load() {
			return
		}

		switch {
		case timedOut || isTimeout(r.err):
			timeouts++
			observability.RecordRecvTimeout()
			c.log.Warn().
				Int("consecutive", timeouts).
				Int("limit", cfg.MaxConsecutiveTimeouts).
				Dur("timeout", cfg.MessageTimeout).
				Msg("telemetry receive timed out")
			if timeouts >= cfg.MaxConsecutiveTimeouts {
				observability.RecordLinkLost()
				c.failLoop(ErrLinkLost.Error())
				return
			}

		case r.err != nil:
			c.log.Error().Err(r.err).Msg("telemetry receive failed")
			c.failLoop(r.err.Error())
			return

		default:
			timeouts = 0
			observability.RecordFrame()
			st, derr := wire.DecodeTelemetry(r.msg.Bytes())
			if derr != nil {
				// Malformed frames never terminate the stream.
				observability.RecordDecodeError()
				c.log.Warn().Err(derr).Int("len", len(r.msg.Bytes())).Msg("telemetry decode failed")
			} else {
				st.Enabled = c.enabled.Load()
				c.emitter.publish(Event{Kind: EventStateUpdate, State: &st})
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(cfg.MessageTimeout)
	}
}

// failLoop reports a loop-terminating failure: the connected flag drops so
// command sends start failing, then the error and status events go out. The
// sockets stay open for best-effort sends; the loop context is cancelled so
// the reader goroutine is released.
func (c *Client) failLoop(reason string) {
	c.connected.Store(false)
	c.emitter.publish(Event{Kind: EventError, Err: reason})
	c.mu.Lock()
	if c.loopCancel != nil {
		c.loopCancel()
	}
	c.setStatusLocked(StatusError, reason)
	c.mu.Unlock()
}
