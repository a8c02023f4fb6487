package wire

import (
	"encoding/binary"
	"math"

	"github.com/robokit/armlink/internal/arm"
)

const (
	telemetryHeaderSize = 7
	telemetryValueCount = 5 * arm.NumJoints

	// TelemetryFrameSize is the minimum frame length: opaque header plus
	// 30 doubles. Longer frames are accepted and trailing bytes ignored.
	TelemetryFrameSize = telemetryHeaderSize + telemetryValueCount*8
)

// movingThreshold is the native-unit velocity magnitude above which the
// arm is considered in motion.
const movingThreshold = 0.001

// DecodeTelemetry parses one controller state frame into a normalized
// snapshot. The function is pure: same bytes, same state.
//
// Receipt of a parseable frame is itself the liveness signal, so the
// returned state always has Connected set and no error; link faults are
// derived from timeouts at the lifecycle layer, never from frame content.
func DecodeTelemetry(b []byte) (arm.State, error) {
	if len(b) < TelemetryFrameSize {
		return arm.State{}, ErrTruncatedFrame
	}

	var raw [telemetryValueCount]float64
	for i := range raw {
		off := telemetryHeaderSize + i*8
		raw[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
	}

	st := arm.State{Connected: true}
	moving := false

	for i := 0; i < arm.NumJoints; i++ {
		vel := raw[arm.NumJoints+i]
		if math.Abs(vel) > movingThreshold {
			moving = true
		}
		st.JointPositions[i] = arm.RadToDeg(raw[i])
		st.JointVelocities[i] = arm.RadToDeg(vel)
		st.JointTorques[i] = raw[2*arm.NumJoints+i]
	}

	pose := raw[3*arm.NumJoints : 4*arm.NumJoints]
	st.Pose = arm.Pose{
		X:     arm.MetersToMillimeters(pose[0]),
		Y:     arm.MetersToMillimeters(pose[1]),
		Z:     arm.MetersToMillimeters(pose[2]),
		Roll:  arm.RadToDeg(pose[3]),
		Pitch: arm.RadToDeg(pose[4]),
		Yaw:   arm.RadToDeg(pose[5]),
	}

	cart := raw[4*arm.NumJoints : 5*arm.NumJoints]
	for _, v := range cart {
		if math.Abs(v) > movingThreshold {
			moving = true
		}
	}
	st.Velocity = arm.CartesianVelocity{
		VX: arm.MetersToMillimeters(cart[0]),
		VY: arm.MetersToMillimeters(cart[1]),
		VZ: arm.MetersToMillimeters(cart[2]),
		WX: arm.RadToDeg(cart[3]),
		WY: arm.RadToDeg(cart[4]),
		WZ: arm.RadToDeg(cart[5]),
	}

	st.Moving = moving
	return st, nil
}
