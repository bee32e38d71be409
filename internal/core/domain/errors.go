package domain

import "errors"

// Sentinel errors shared across the core packages.
var (
	ErrInvalidMAC          = errors.New("invalid MAC address format")
	ErrInvalidChannel      = errors.New("channel must be in [1,14]")
	ErrInterfaceRequired   = errors.New("interface name is required")
	ErrNoAllowedChannels   = errors.New("at least one allowed channel is required")
	ErrNoProbeBudget       = errors.New("at least one of probe address limit or time limit must be positive")
	ErrInvalidDeauthRounds = errors.New("n_deauth_rounds must be in [1,256]")
	ErrSocketNotOpen       = errors.New("raw packet channel is not open")
	ErrSocketClosed        = errors.New("raw packet channel is closed")
	ErrSendFailed          = errors.New("raw packet channel send failed")
	ErrRecvFailed          = errors.New("raw packet channel recv failed")
	ErrInventoryAbsent     = errors.New("no inventory allocated for channel")
	ErrUnsupportedMethod   = errors.New("deauth method is not implemented")
)
