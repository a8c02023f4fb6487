package link

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/robokit/armlink/internal/testutil/testlog"
	"github.com/robokit/armlink/internal/wire"
)

// attachDealer gives the client a command channel without a handshake.
func attachDealer(c *Client, connected bool) *fakeSocket {
	dealer := newFakeSocket()
	c.mu.Lock()
	c.dealer = dealer
	c.mu.Unlock()
	c.connected.Store(connected)
	return dealer
}

func lastSent(t *testing.T, sock *fakeSocket) wire.CommandRequest {
	t.Helper()
	frames := sock.sentFrames()
	if len(frames) == 0 {
		t.Fatalf("nothing sent")
	}
	req, err := wire.DecodeCommandRequest(frames[len(frames)-1])
	if err != nil {
		t.Fatalf("decode sent frame: %v", err)
	}
	return req
}

func TestExecuteUnknownCommand(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	err := c.Execute(context.Background(), "self_destruct", nil)
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestExecuteConnectValidatesParams(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	for _, data := range []string{``, `{}`, `{"ipAddress":"10.0.0.9"}`, `{"port":5555}`} {
		err := c.Execute(context.Background(), CmdConnect, json.RawMessage(data))
		if !errors.Is(err, ErrInvalidParameters) {
			t.Fatalf("data=%q expected ErrInvalidParameters, got %v", data, err)
		}
	}
}

func TestExecuteConnectDisconnect(t *testing.T) {
	testlog.Start(t)
	tr := newFakeTransport()
	c := NewClient(testLogger, tr)
	defer c.Close()

	data := json.RawMessage(`{"ipAddress":"10.0.0.9","port":5555,"messageTimeoutMs":50,"maxConsecutiveTimeouts":1000}`)
	if err := c.Execute(context.Background(), CmdConnect, data); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if c.Status() != StatusConnected {
		t.Fatalf("status=%s", c.Status())
	}
	if len(tr.req.dialed) != 1 || tr.req.dialed[0] != "tcp://10.0.0.9:5555" {
		t.Fatalf("rendezvous dialed=%v", tr.req.dialed)
	}
	if err := c.Execute(context.Background(), CmdDisconnect, nil); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if c.Status() != StatusDisconnected {
		t.Fatalf("status=%s", c.Status())
	}
}

func TestExecuteFailsFastWhenNotConnected(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	for _, name := range []string{CmdEnable, CmdDisable, CmdHome, CmdMoveToTarget, CmdStop, CmdReset, CmdSaveHomePosition, CmdResetHomePosition} {
		err := c.Execute(context.Background(), name, json.RawMessage(`[0,0,0,0,0,0]`))
		if !errors.Is(err, ErrNotConnected) {
			t.Fatalf("%s: expected ErrNotConnected, got %v", name, err)
		}
	}
}

func TestEmergencyStopBypassesConnectedCheck(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())

	// Disconnected with no channel at all: best effort still never
	// reports ErrNotConnected.
	err := c.Execute(context.Background(), CmdEmergencyStop, nil)
	if errors.Is(err, ErrNotConnected) {
		t.Fatalf("emergency_stop must not fail with ErrNotConnected, got %v", err)
	}
	if !errors.Is(err, ErrNoCommandChannel) {
		t.Fatalf("expected ErrNoCommandChannel, got %v", err)
	}

	// Channel still open but link declared lost: the send goes out.
	dealer := attachDealer(c, false)
	if err := c.Execute(context.Background(), CmdEmergencyStop, nil); err != nil {
		t.Fatalf("emergency_stop: %v", err)
	}
	req := lastSent(t, dealer)
	if req.Header.CommandType != wire.CommandEmergencyStop {
		t.Fatalf("command type=%d", req.Header.CommandType)
	}
	if req.Header.MoveType != wire.MoveOther {
		t.Fatalf("move type=%d", req.Header.MoveType)
	}
}

func TestMoveToTargetPoseConversion(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	dealer := attachDealer(c, true)

	data := json.RawMessage(`{"pose":{"x":150,"y":0,"z":250,"roll":0,"pitch":90,"yaw":0}}`)
	if err := c.Execute(context.Background(), CmdMoveToTarget, data); err != nil {
		t.Fatalf("move_to_target: %v", err)
	}
	req := lastSent(t, dealer)
	if req.Header.MoveType != wire.MoveCartesianPose {
		t.Fatalf("move type=%d", req.Header.MoveType)
	}
	if math.Abs(req.Target[0]-0.150) > 1e-9 {
		t.Fatalf("x=%v want 0.150 m", req.Target[0])
	}
	if math.Abs(req.Target[2]-0.250) > 1e-9 {
		t.Fatalf("z=%v want 0.250 m", req.Target[2])
	}
	if math.Abs(req.Target[4]-math.Pi/2) > 1e-9 {
		t.Fatalf("pitch=%v want pi/2", req.Target[4])
	}
}

func TestMoveToTargetJointTuple(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	dealer := attachDealer(c, true)

	if err := c.Execute(context.Background(), CmdMoveToTarget, json.RawMessage(`[90,0,-45,0,0,0]`)); err != nil {
		t.Fatalf("move_to_target: %v", err)
	}
	req := lastSent(t, dealer)
	if req.Header.MoveType != wire.MoveJointPosition {
		t.Fatalf("move type=%d", req.Header.MoveType)
	}
	if math.Abs(req.Target[0]-math.Pi/2) > 1e-9 {
		t.Fatalf("joint0=%v want pi/2", req.Target[0])
	}
	if math.Abs(req.Target[2]+math.Pi/4) > 1e-9 {
		t.Fatalf("joint2=%v want -pi/4", req.Target[2])
	}
}

func TestMoveToTargetRequiresTarget(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	attachDealer(c, true)

	for _, data := range []string{``, `{}`, `[1,2,3]`, `{"joints":[0,0,0,0,0,0],"pose":{"x":1}}`} {
		err := c.Execute(context.Background(), CmdMoveToTarget, json.RawMessage(data))
		if !errors.Is(err, ErrInvalidParameters) {
			t.Fatalf("data=%q expected ErrInvalidParameters, got %v", data, err)
		}
	}
}

func TestHomeDefaultsToControllerSide(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	dealer := attachDealer(c, true)

	if err := c.Execute(context.Background(), CmdHome, nil); err != nil {
		t.Fatalf("home: %v", err)
	}
	req := lastSent(t, dealer)
	if req.Header.CommandType != wire.CommandHome {
		t.Fatalf("command type=%d", req.Header.CommandType)
	}
	if req.Header.MoveType != wire.MoveOther {
		t.Fatalf("move type=%d", req.Header.MoveType)
	}
}

func TestEnableDisableStamp(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	dealer := attachDealer(c, true)

	if err := c.Execute(context.Background(), CmdEnable, nil); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !c.enabled.Load() {
		t.Fatalf("enable must set the stamp")
	}
	if req := lastSent(t, dealer); req.Header.CommandType != wire.CommandEnable {
		t.Fatalf("command type=%d", req.Header.CommandType)
	}

	if err := c.Execute(context.Background(), CmdDisable, nil); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if c.enabled.Load() {
		t.Fatalf("disable must clear the stamp")
	}
}

func TestCommandIDsIncrement(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	dealer := attachDealer(c, true)

	for _, name := range []string{CmdStop, CmdReset, CmdSaveHomePosition} {
		if err := c.Execute(context.Background(), name, nil); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	frames := dealer.sentFrames()
	if len(frames) != 3 {
		t.Fatalf("sent=%d", len(frames))
	}
	var prev uint32
	for i, frame := range frames {
		h, err := wire.DecodeCommandHeader(frame)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if h.CommandID <= prev {
			t.Fatalf("command ids not increasing: %d then %d", prev, h.CommandID)
		}
		prev = h.CommandID
	}
}

func TestSendFailureIsReturned(t *testing.T) {
	testlog.Start(t)
	c := NewClient(testLogger, newFakeTransport())
	dealer := attachDealer(c, true)
	dealer.sendErr = errors.New("pipe full")

	err := c.Execute(context.Background(), CmdStop, nil)
	if err == nil || errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
