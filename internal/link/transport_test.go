package link

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/robokit/armlink/internal/wire"
)

type recvResult struct {
	msg zmq4.Msg
	err error
}

// fakeSocket scripts Recv results and records what the client does to it.
// An exhausted script behaves like a quiet wire: Recv times out quickly so
// loops observe flags the way they would after a real deadline.
type fakeSocket struct {
	mu      sync.Mutex
	dialed  []string
	sent    [][]byte
	options map[string]interface{}
	dialErr error
	sendErr error
	closed  bool

	script chan recvResult
	done   chan struct{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		options: make(map[string]interface{}),
		script:  make(chan recvResult, 64),
		done:    make(chan struct{}),
	}
}

func (s *fakeSocket) push(r recvResult) { s.script <- r }

func (s *fakeSocket) pushFrame(b []byte) { s.push(recvResult{msg: zmq4.NewMsg(b)}) }

func (s *fakeSocket) pushTimeout() { s.push(recvResult{err: os.ErrDeadlineExceeded}) }

func (s *fakeSocket) Dial(ep string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dialErr != nil {
		return s.dialErr
	}
	s.dialed = append(s.dialed, ep)
	return nil
}

func (s *fakeSocket) Send(m zmq4.Msg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, m.Bytes())
	return nil
}

func (s *fakeSocket) Recv() (zmq4.Msg, error) {
	select {
	case r := <-s.script:
		return r.msg, r.err
	case <-s.done:
		return zmq4.Msg{}, os.ErrDeadlineExceeded
	case <-time.After(10 * time.Millisecond):
		return zmq4.Msg{}, os.ErrDeadlineExceeded
	}
}

func (s *fakeSocket) SetOption(name string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[name] = value
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSocket) sentFrames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

// silentSocket models a live socket on a quiet wire: Recv blocks until the
// socket is closed, the way a real zmq read does.
type silentSocket struct {
	*fakeSocket
}

func (s *silentSocket) Recv() (zmq4.Msg, error) {
	<-s.done
	return zmq4.Msg{}, errors.New("socket closed")
}

// fakeTransport hands out one scripted socket per role and counts
// handshake attempts. The override fields swap in a different Socket
// implementation for one role while keeping the recorded fakes for the
// others.
type fakeTransport struct {
	mu       sync.Mutex
	req      *fakeSocket
	dealer   *fakeSocket
	sub      *fakeSocket
	reqCalls int

	reqOverride Socket
	subOverride Socket
}

func newFakeTransport() *fakeTransport {
	t := &fakeTransport{
		req:    newFakeSocket(),
		dealer: newFakeSocket(),
		sub:    newFakeSocket(),
	}
	t.req.pushFrame(t.reqReply())
	return t
}

func (t *fakeTransport) reqReply() []byte {
	return wire.EncodeDiscoveryReply(
		wire.Endpoint{IP: [4]byte{127, 0, 0, 1}, Port: 5556},
		wire.Endpoint{IP: [4]byte{127, 0, 0, 1}, Port: 5557},
	)
}

func (t *fakeTransport) NewReq(ctx context.Context, timeout time.Duration) Socket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reqCalls++
	if t.reqOverride != nil {
		return t.reqOverride
	}
	return t.req
}

func (t *fakeTransport) NewDealer(ctx context.Context, timeout time.Duration) Socket {
	return t.dealer
}

func (t *fakeTransport) NewSub(ctx context.Context, timeout time.Duration) Socket {
	if t.subOverride != nil {
		return t.subOverride
	}
	return t.sub
}

func (t *fakeTransport) handshakes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reqCalls
}

// telemetryFrame builds a minimal wire frame from native-unit values keyed
// by their index in the 30-double layout.
func telemetryFrame(values map[int]float64) []byte {
	buf := make([]byte, wire.TelemetryFrameSize)
	for i, v := range values {
		off := 7 + i*8
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
	}
	return buf
}
