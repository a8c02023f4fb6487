package wire

import (
	"encoding/binary"
	"math"

	"github.com/robokit/armlink/internal/arm"
)

// MoveType selects which payload slot of a command request is populated.
type MoveType uint8

const (
	MoveJointPosition MoveType = iota
	MoveJointVelocity
	MoveJointTorque
	MoveCartesianPose
	MoveCartesianVelocity
	MoveOther
)

// RequestType marks whether the controller should report completion back.
type RequestType uint8

const (
	RequestNoCallback RequestType = 0
	RequestCallback   RequestType = 1
)

// CommandType is the controller-side operation code.
type CommandType uint16

const (
	CommandEnable        CommandType = 0x0001
	CommandDisable       CommandType = 0x0002
	CommandHome          CommandType = 0x0003
	CommandMove          CommandType = 0x0004
	CommandStop          CommandType = 0x0005
	CommandEmergencyStop CommandType = 0x0006
	CommandReset         CommandType = 0x0007
	CommandSaveHome      CommandType = 0x0008
	CommandResetHome     CommandType = 0x0009
)

const (
	commandHeaderSize = 1 + 4 + 2 + 1

	moveSlotSize  = arm.NumJoints * 8
	moveSlotCount = 5

	// CommandPayloadSize is the fixed payload: one 48-byte slot per move
	// kind, always all emitted regardless of which one is populated. The
	// controller expects constant-length frames; do not shrink this.
	CommandPayloadSize = moveSlotCount * moveSlotSize

	// CommandRequestSize is the full wire size of one command request.
	CommandRequestSize = commandHeaderSize + CommandPayloadSize
)

// CommandHeader is the fixed prefix of a command request.
type CommandHeader struct {
	RequestType RequestType
	CommandID   uint32
	CommandType CommandType
	MoveType    MoveType
}

// CommandRequest is one outbound controller command. Target holds the six
// doubles for the slot selected by MoveType; it is ignored for MoveOther.
type CommandRequest struct {
	Header CommandHeader
	Target [arm.NumJoints]float64
}

// DecodeCommandHeader parses the 8-byte command prefix. An out-of-range
// move discriminant is ErrUnknownMoveType.
func DecodeCommandHeader(b []byte) (CommandHeader, error) {
	if len(b) < commandHeaderSize {
		return CommandHeader{}, ErrShortCommand
	}
	h := CommandHeader{
		RequestType: RequestType(b[0]),
		CommandID:   binary.LittleEndian.Uint32(b[1:5]),
		CommandType: CommandType(binary.LittleEndian.Uint16(b[5:7])),
		MoveType:    MoveType(b[7]),
	}
	if h.MoveType > MoveOther {
		return CommandHeader{}, ErrUnknownMoveType
	}
	return h, nil
}

// EncodeCommandRequest renders the fixed 248-byte wire form. Every slot is
// emitted; only the slot selected by the move type carries the target.
func EncodeCommandRequest(r CommandRequest) []byte {
	buf := make([]byte, CommandRequestSize)
	buf[0] = byte(r.Header.RequestType)
	binary.LittleEndian.PutUint32(buf[1:5], r.Header.CommandID)
	binary.LittleEndian.PutUint16(buf[5:7], uint16(r.Header.CommandType))
	buf[7] = byte(r.Header.MoveType)

	if slot, ok := slotOffset(r.Header.MoveType); ok {
		for i, v := range r.Target {
			off := slot + i*8
			binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
		}
	}
	return buf
}

// DecodeCommandRequest parses a full command request, reading back only the
// slot selected by the discriminant.
func DecodeCommandRequest(b []byte) (CommandRequest, error) {
	h, err := DecodeCommandHeader(b)
	if err != nil {
		return CommandRequest{}, err
	}
	if len(b) < CommandRequestSize {
		return CommandRequest{}, ErrShortCommand
	}
	r := CommandRequest{Header: h}
	if slot, ok := slotOffset(h.MoveType); ok {
		for i := range r.Target {
			off := slot + i*8
			r.Target[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
		}
	}
	return r, nil
}

func slotOffset(mt MoveType) (int, bool) {
	if mt >= MoveType(moveSlotCount) {
		return 0, false
	}
	return commandHeaderSize + int(mt)*moveSlotSize, true
}
