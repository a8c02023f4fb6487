package wire

import "errors"

var (
	ErrShortEndpoint     = errors.New("wire: short endpoint descriptor")
	ErrBadDiscoveryReply = errors.New("wire: bad discovery reply")
	ErrShortCommand      = errors.New("wire: short command request")
	ErrUnknownMoveType   = errors.New("wire: unknown move type")
	ErrTruncatedFrame    = errors.New("wire: truncated telemetry frame")
)
