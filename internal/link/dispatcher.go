package link

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/robokit/armlink/internal/arm"
	"github.com/robokit/armlink/internal/observability"
	"github.com/robokit/armlink/internal/wire"
)

// Command names accepted by Execute.
const (
	CmdConnect           = "connect"
	CmdDisconnect        = "disconnect"
	CmdReconnect         = "reconnect"
	CmdEnable            = "enable"
	CmdDisable           = "disable"
	CmdHome              = "home"
	CmdMoveToTarget      = "move_to_target"
	CmdStop              = "stop"
	CmdEmergencyStop     = "emergency_stop"
	CmdReset             = "reset"
	CmdSaveHomePosition  = "save_home_position"
	CmdResetHomePosition = "reset_home_position"
)

type connectParams struct {
	IPAddress        string `json:"ipAddress"`
	Port             int    `json:"port"`
	Topic            string `json:"topic,omitempty"`
	MessageTimeoutMS int    `json:"messageTimeoutMs,omitempty"`
	MaxTimeouts      int    `json:"maxConsecutiveTimeouts,omitempty"`
}

type poseParams struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

type targetParams struct {
	Joints []float64   `json:"joints,omitempty"`
	Pose   *poseParams `json:"pose,omitempty"`
}

// Execute dispatches one named command. Caller-misuse errors (unknown
// name, bad parameters, not connected) are returned synchronously and
// never become lifecycle events.
func (c *Client) Execute(ctx context.Context, name string, data json.RawMessage) error {
	switch name {
	case CmdConnect:
		var p connectParams
		if err := unmarshalParams(data, &p); err != nil {
			return err
		}
		if p.IPAddress == "" || p.Port == 0 {
			return fmt.Errorf("%w: connect requires ipAddress and port", ErrInvalidParameters)
		}
		return c.Connect(ctx, Config{
			Host:                   p.IPAddress,
			Port:                   p.Port,
			Topic:                  p.Topic,
			MessageTimeout:         msFromParam(p.MessageTimeoutMS),
			MaxConsecutiveTimeouts: p.MaxTimeouts,
		})

	case CmdDisconnect:
		c.Disconnect()
		return nil

	case CmdReconnect:
		return c.Reconnect(ctx)

	case CmdEnable:
		if err := c.sendCommand(name, wire.CommandEnable, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, true); err != nil {
			return err
		}
		c.enabled.Store(true)
		return nil

	case CmdDisable:
		if err := c.sendCommand(name, wire.CommandDisable, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, true); err != nil {
			return err
		}
		c.enabled.Store(false)
		return nil

	case CmdHome:
		mt, target, err := parseTarget(data, false)
		if err != nil {
			return err
		}
		return c.sendCommand(name, wire.CommandHome, mt, target, wire.RequestCallback, true)

	case CmdMoveToTarget:
		mt, target, err := parseTarget(data, true)
		if err != nil {
			return err
		}
		return c.sendCommand(name, wire.CommandMove, mt, target, wire.RequestCallback, true)

	case CmdStop:
		return c.sendCommand(name, wire.CommandStop, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, true)

	case CmdEmergencyStop:
		// Safety path: always attempt the send, connected or not.
		return c.sendCommand(name, wire.CommandEmergencyStop, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, false)

	case CmdReset:
		return c.sendCommand(name, wire.CommandReset, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, true)

	case CmdSaveHomePosition:
		return c.sendCommand(name, wire.CommandSaveHome, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, true)

	case CmdResetHomePosition:
		return c.sendCommand(name, wire.CommandResetHome, wire.MoveOther, [arm.NumJoints]float64{}, wire.RequestNoCallback, true)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// sendCommand encodes and writes one fixed-size command request on the
// dealer channel. requireConnected distinguishes the normal fail-fast path
// from the emergency-stop best-effort path.
func (c *Client) sendCommand(name string, ct wire.CommandType, mt wire.MoveType, target [arm.NumJoints]float64, rt wire.RequestType, requireConnected bool) error {
	if requireConnected && !c.connected.Load() {
		return fmt.Errorf("%w: %s", ErrNotConnected, name)
	}

	c.mu.Lock()
	dealer := c.dealer
	c.mu.Unlock()
	if dealer == nil {
		return fmt.Errorf("%w: %s", ErrNoCommandChannel, name)
	}

	req := wire.CommandRequest{
		Header: wire.CommandHeader{
			RequestType: rt,
			CommandID:   c.cmdSeq.Add(1),
			CommandType: ct,
			MoveType:    mt,
		},
		Target: target,
	}
	if err := dealer.Send(zmq4.NewMsg(wire.EncodeCommandRequest(req))); err != nil {
		return fmt.Errorf("link: send %s: %w", name, err)
	}
	observability.RecordCommand(name)
	c.log.Debug().
		Str("command", name).
		Uint32("id", req.Header.CommandID).
		Uint8("move_type", uint8(mt)).
		Msg("command sent")
	return nil
}

// parseTarget reads a joint 6-tuple or a pose object. Values arrive in the
// normalized units the client reports (degrees, millimeters) and are
// converted to controller-native radians and meters here. With required
// false, empty data selects the controller-side default (MoveOther).
func parseTarget(data json.RawMessage, required bool) (wire.MoveType, [arm.NumJoints]float64, error) {
	var target [arm.NumJoints]float64
	if len(data) == 0 || string(data) == "null" {
		if required {
			return 0, target, fmt.Errorf("%w: missing target", ErrInvalidParameters)
		}
		return wire.MoveOther, target, nil
	}

	// A bare JSON array is a joint tuple.
	var tuple []float64
	if err := json.Unmarshal(data, &tuple); err == nil {
		return jointTarget(tuple)
	}

	var p targetParams
	if err := unmarshalParams(data, &p); err != nil {
		return 0, target, err
	}
	switch {
	case p.Joints != nil && p.Pose != nil:
		return 0, target, fmt.Errorf("%w: both joints and pose given", ErrInvalidParameters)
	case p.Joints != nil:
		return jointTarget(p.Joints)
	case p.Pose != nil:
		target = [arm.NumJoints]float64{
			arm.MillimetersToMeters(p.Pose.X),
			arm.MillimetersToMeters(p.Pose.Y),
			arm.MillimetersToMeters(p.Pose.Z),
			arm.DegToRad(p.Pose.Roll),
			arm.DegToRad(p.Pose.Pitch),
			arm.DegToRad(p.Pose.Yaw),
		}
		return wire.MoveCartesianPose, target, nil
	case required:
		return 0, target, fmt.Errorf("%w: missing target", ErrInvalidParameters)
	default:
		return wire.MoveOther, target, nil
	}
}

func jointTarget(joints []float64) (wire.MoveType, [arm.NumJoints]float64, error) {
	var target [arm.NumJoints]float64
	if len(joints) != arm.NumJoints {
		return 0, target, fmt.Errorf("%w: want %d joint values, got %d", ErrInvalidParameters, arm.NumJoints, len(joints))
	}
	for i, v := range joints {
		target[i] = arm.DegToRad(v)
	}
	return wire.MoveJointPosition, target, nil
}

func unmarshalParams(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return nil
}

func msFromParam(ms int) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return 0
}
