package gate

import (
	"donorprofile/internal/captcha"
	"donorprofile/internal/profile/adapter"
	"donorprofile/internal/profile/fetcher"
	"donorprofile/internal/profile/models"
)

// normalize is swapped in tests to observe adapter calls.
var normalize = adapter.Normalize

// Transition applies ev to s. It performs no I/O; any work it needs is
// returned as effects for the driver to execute. Events that do not apply to
// the current phase leave the state unchanged.
func Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case Started:
		return State{Phase: PhaseLoading, UUID: e.UUID}, []Effect{FetchProfile{}}
	case Fetched:
		return onFetched(s, e)
	case CacheLooked:
		return onCacheLooked(s, e)
	case Submitted:
		return onSubmitted(s, e)
	case CaptchaChecked:
		return onCaptchaChecked(s, e)
	}
	return s, nil
}

func onFetched(s State, e Fetched) (State, []Effect) {
	switch s.Phase {
	case PhaseLoading:
		if e.Err != nil || e.Result.Status == fetcher.StatusNotFound {
			return notFound(s, e.Err != nil), nil
		}
		if e.Result.Status == fetcher.StatusFull {
			return display(s, e.Result.Profile), nil
		}
		s.Preview = normalizedOrNil(e.Result.Profile)
		return s, []Effect{ReadCache{}}

	case PhaseAutoVerifying:
		if e.Err == nil && e.Result.Status == fetcher.StatusFull {
			answers := *s.Answers
			return display(s, e.Result.Profile), []Effect{WriteCache{Answers: answers}}
		}
		s.Phase = PhaseNeedsVerification
		s.Answers = nil
		return s, []Effect{ClearCache{}}

	case PhaseVerifying:
		if e.Err == nil && e.Result.Status == fetcher.StatusFull {
			answers := *s.Answers
			return display(s, e.Result.Profile), []Effect{WriteCache{Answers: answers}}
		}
		s.Phase = PhaseNeedsVerification
		s.Answers = nil
		s.CaptchaReset = true
		s.Failure = &Failure{Kind: FailureMismatch, Message: MessageMismatch, Transient: e.Err != nil}
		return s, nil
	}
	return s, nil
}

func onCacheLooked(s State, e CacheLooked) (State, []Effect) {
	if s.Phase != PhaseLoading {
		return s, nil
	}
	if e.Answers == nil {
		s.Phase = PhaseNeedsVerification
		return s, nil
	}
	answers := *e.Answers
	s.Phase = PhaseAutoVerifying
	s.Answers = &answers
	return s, []Effect{FetchProfile{Answers: &answers}}
}

func onSubmitted(s State, e Submitted) (State, []Effect) {
	if s.Phase != PhaseNeedsVerification {
		return s, nil
	}
	s.Failure = nil
	s.FieldErrors = nil
	s.CaptchaReset = false

	if fields := ValidateSubmission(e.Answers, e.CaptchaToken); len(fields) > 0 {
		s.Failure = &Failure{Kind: FailureValidation, Message: MessageValidation}
		s.FieldErrors = fields
		return s, nil
	}
	if e.TokenSpent {
		s.Failure = &Failure{Kind: FailureCaptcha, Message: MessageCaptcha, Details: []string{captcha.CodeDuplicate}}
		s.CaptchaReset = true
		return s, nil
	}

	answers := e.Answers
	answers.UUID = s.UUID
	s.Phase = PhaseVerifying
	s.Answers = &answers
	return s, []Effect{VerifyCaptcha{Token: e.CaptchaToken, RemoteIP: e.RemoteIP}}
}

func onCaptchaChecked(s State, e CaptchaChecked) (State, []Effect) {
	if s.Phase != PhaseVerifying {
		return s, nil
	}
	if !e.Result.Success {
		s.Phase = PhaseNeedsVerification
		s.Answers = nil
		s.CaptchaReset = true
		s.Failure = &Failure{Kind: FailureCaptcha, Message: MessageCaptcha, Details: e.Result.ErrorCodes}
		return s, nil
	}
	answers := *s.Answers
	return s, []Effect{FetchProfile{Answers: &answers}}
}

func notFound(s State, transient bool) State {
	return State{
		Phase:   PhaseNotFound,
		UUID:    s.UUID,
		Failure: &Failure{Kind: FailureNotFound, Message: MessageNotFound, Transient: transient},
	}
}

func display(s State, raw *models.APIProfile) State {
	return State{
		Phase:   PhaseDisplay,
		UUID:    s.UUID,
		Preview: s.Preview,
		Profile: normalizedOrNil(raw),
	}
}

func normalizedOrNil(raw *models.APIProfile) *models.Profile {
	if raw == nil {
		return nil
	}
	p := normalize(*raw)
	return &p
}
