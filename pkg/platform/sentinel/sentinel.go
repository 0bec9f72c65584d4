package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and upstream clients return
// these (optionally wrapped) so services can translate them into gate outcomes.
//
// - ErrNotFound: key or remote record does not exist
// - ErrCorrupt: stored bytes could not be decoded
// - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound    = errors.New("not found")
	ErrCorrupt     = errors.New("corrupt record")
	ErrUnavailable = errors.New("unavailable")
)
