// Package gate decides whether a donor profile is shown directly, unlocked by
// replaying cached answers, or held behind the verification form.
//
// The rules live in Transition, a pure function over State and Event. Service
// drives it: it executes the returned effects (fetch, cache, captcha) and feeds
// their outcomes back as events until none remain.
package gate

import "donorprofile/internal/profile/models"

// Phase is the position of one page load in the gating flow.
type Phase string

const (
	PhaseLoading           Phase = "loading"
	PhaseAutoVerifying     Phase = "auto_verifying"
	PhaseNeedsVerification Phase = "needs_verification"
	PhaseVerifying         Phase = "verifying"
	PhaseDisplay           Phase = "display"
	PhaseNotFound          Phase = "not_found"
)

// Terminal reports whether the phase ends the page load.
func (p Phase) Terminal() bool {
	return p == PhaseDisplay || p == PhaseNotFound
}

// FailureKind classifies what went wrong, as surfaced to the viewer.
type FailureKind string

const (
	FailureNotFound                    FailureKind = "not_found"
	FailurePartialRequiresVerification FailureKind = "partial_requires_verification"
	FailureValidation                  FailureKind = "validation"
	FailureCaptcha                     FailureKind = "captcha"
	FailureMismatch                    FailureKind = "mismatch"
	FailurePending                     FailureKind = "pending"
)

// Failure is the user-facing error attached to a state.
// Transient marks failures that were caused by an upstream outage but are
// shown as NotFound or Mismatch.
type Failure struct {
	Kind      FailureKind
	Message   string
	Details   []string
	Transient bool
}

// State is the full gating state for one profile view.
type State struct {
	Phase Phase
	UUID  string

	// Preview is the normalized partial profile (name and avatar) shown on the form.
	Preview *models.Profile
	// Profile is set only in PhaseDisplay.
	Profile *models.Profile
	// Answers are the credentials being replayed or submitted.
	Answers *models.AnswerSet

	Failure     *Failure
	FieldErrors map[string]string
	// CaptchaReset tells the form the previous token is spent.
	CaptchaReset bool
}

// Kind returns the failure kind for the state, treating a plain
// NeedsVerification as FailurePartialRequiresVerification.
func (s State) Kind() FailureKind {
	if s.Failure != nil {
		return s.Failure.Kind
	}
	if s.Phase == PhaseNeedsVerification {
		return FailurePartialRequiresVerification
	}
	return ""
}

// Viewer-facing messages.
const (
	MessageMismatch   = "Thông tin không chính xác. Vui lòng kiểm tra lại."
	MessageCaptcha    = "Xác thực reCAPTCHA không thành công. Vui lòng thử lại."
	MessageValidation = "Vui lòng điền đầy đủ tất cả thông tin"
	MessagePending    = "Yêu cầu xác thực trước đó đang được xử lý. Vui lòng đợi."
	MessageNotFound   = "Không tìm thấy hồ sơ"
)
