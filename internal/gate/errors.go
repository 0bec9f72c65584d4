package gate

import dErrors "donorprofile/pkg/domain-errors"

// ErrAttemptInFlight is returned by Submit while the same session already has
// a verification attempt running for the profile.
var ErrAttemptInFlight = dErrors.New(dErrors.CodeConflict, "verification attempt already in progress")
