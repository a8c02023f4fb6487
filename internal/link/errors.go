package link

import "errors"

var (
	ErrConnect           = errors.New("link: connect failed")
	ErrLinkLost          = errors.New("link: connection appears lost")
	ErrNotConnected      = errors.New("link: not connected")
	ErrNoCommandChannel  = errors.New("link: no command channel")
	ErrUnknownCommand    = errors.New("link: unknown command")
	ErrInvalidParameters = errors.New("link: invalid parameters")
)
