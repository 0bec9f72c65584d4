package gate

import (
	"donorprofile/internal/captcha"
	"donorprofile/internal/profile/fetcher"
	"donorprofile/internal/profile/models"
)

// Event is an input to Transition.
type Event interface {
	event()
}

// Started begins a page load for UUID.
type Started struct {
	UUID string
}

// Fetched carries the outcome of a FetchProfile effect.
type Fetched struct {
	Result fetcher.Result
	Err    error
}

// CacheLooked carries the outcome of a ReadCache effect. Answers is nil when
// nothing valid was cached.
type CacheLooked struct {
	Answers *models.AnswerSet
}

// Submitted is a verification form post. TokenSpent is set when the captcha
// token was already sent to the verifier.
type Submitted struct {
	Answers      models.AnswerSet
	CaptchaToken string
	TokenSpent   bool
	RemoteIP     string
}

// CaptchaChecked carries the outcome of a VerifyCaptcha effect.
type CaptchaChecked struct {
	Result captcha.Result
}

func (Started) event()        {}
func (Fetched) event()        {}
func (CacheLooked) event()    {}
func (Submitted) event()      {}
func (CaptchaChecked) event() {}

// Effect is work Transition asks the driver to perform.
type Effect interface {
	effect()
}

// FetchProfile looks the profile up, with answers when non-nil.
type FetchProfile struct {
	Answers *models.AnswerSet
}

// ReadCache looks up cached answers for the state's UUID.
type ReadCache struct{}

// WriteCache stores answers with a fresh timestamp.
type WriteCache struct {
	Answers models.AnswerSet
}

// ClearCache drops the cached answers.
type ClearCache struct{}

// VerifyCaptcha sends the token to the captcha verifier.
type VerifyCaptcha struct {
	Token    string
	RemoteIP string
}

func (FetchProfile) effect()  {}
func (ReadCache) effect()     {}
func (WriteCache) effect()    {}
func (ClearCache) effect()    {}
func (VerifyCaptcha) effect() {}
