package gate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"donorprofile/internal/captcha"
	"donorprofile/internal/gate/metrics"
	"donorprofile/internal/profile/fetcher"
	"donorprofile/internal/profile/models"
	"donorprofile/pkg/domain"
)

// ProfileFetcher looks a profile up on the upstream API.
type ProfileFetcher interface {
	Fetch(ctx context.Context, uuid string, answers *models.AnswerSet) (fetcher.Result, error)
}

// AnswerCache holds the session's last successful answers.
type AnswerCache interface {
	Read(ctx context.Context, sessionID, uuid string) (*models.AnswerSet, error)
	Write(ctx context.Context, sessionID string, answers models.AnswerSet) (models.AnswerSet, error)
	Clear(ctx context.Context, sessionID string) error
}

// CaptchaChecker verifies a captcha token.
type CaptchaChecker interface {
	Check(ctx context.Context, token, remoteIP string) captcha.Result
}

// Submission is one verification form post.
type Submission struct {
	UUID         string
	FullName     string
	Gender       string
	DateOfBirth  string
	IDNumber     string
	PhoneNumber  string
	CaptchaToken string
	RemoteIP     string
}

// maxSteps bounds the effect loop; a full verification takes five.
const maxSteps = 16

// Service drives Transition against the real collaborators.
type Service struct {
	fetcher  ProfileFetcher
	cache    AnswerCache
	captcha  CaptchaChecker
	inflight *inflight
	tokens   *spentTokens
	previews *previews
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func NewService(f ProfileFetcher, c AnswerCache, cv CaptchaChecker, opts ...Option) *Service {
	s := &Service{
		fetcher:  f,
		cache:    c,
		captcha:  cv,
		inflight: newInflight(),
		tokens:   newSpentTokens(),
		previews: newPreviews(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load runs a page load for rawUUID: fetch, then cache check and silent
// re-verification when the profile is partial. Malformed identifiers end in
// PhaseNotFound without any upstream call.
func (s *Service) Load(ctx context.Context, sessionID, rawUUID string) State {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("load", time.Since(start)) }()

	id, err := domain.ParseProfileID(rawUUID)
	if err != nil {
		st := notFound(State{UUID: rawUUID}, false)
		s.recordOutcome("load", st)
		return st
	}

	st := s.run(ctx, sessionID, "load", State{}, Started{UUID: id.String()})
	if st.Preview != nil {
		s.previews.put(st.UUID, *st.Preview)
	}
	s.recordOutcome("load", st)
	return st
}

// Submit validates a verification attempt locally, then checks the captcha and
// re-fetches with the answers. It returns ErrAttemptInFlight when the session
// already has an attempt running for this profile.
func (s *Service) Submit(ctx context.Context, sessionID string, sub Submission) (State, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("submit", time.Since(start)) }()

	id, err := domain.ParseProfileID(sub.UUID)
	if err != nil {
		st := notFound(State{UUID: sub.UUID}, false)
		s.recordOutcome("submit", st)
		return st, nil
	}
	uuid := id.String()

	release, ok := s.inflight.acquire(sessionID + "|" + uuid)
	if !ok {
		s.logger.InfoContext(ctx, "verification attempt rejected, another in flight", "uuid", uuid)
		s.metrics.IncrementOutcome("submit", "rejected", string(FailurePending))
		return State{}, ErrAttemptInFlight
	}
	defer release()

	fullName := strings.TrimSpace(sub.FullName)
	initial := State{Phase: PhaseNeedsVerification, UUID: uuid, Preview: s.previews.get(uuid)}
	switch {
	case initial.Preview != nil:
		fullName = initial.Preview.FullName
	case fullName != "":
		initial.Preview = &models.Profile{FullName: fullName}
	}

	token := strings.TrimSpace(sub.CaptchaToken)
	ev := Submitted{
		Answers: models.AnswerSet{
			UUID:        uuid,
			FullName:    fullName,
			Gender:      strings.TrimSpace(sub.Gender),
			DateOfBirth: strings.TrimSpace(sub.DateOfBirth),
			IDNumber:    strings.TrimSpace(sub.IDNumber),
			PhoneNumber: strings.TrimSpace(sub.PhoneNumber),
		},
		CaptchaToken: token,
		TokenSpent:   token != "" && s.tokens.seen(token),
		RemoteIP:     sub.RemoteIP,
	}

	st := s.run(ctx, sessionID, "submit", initial, ev)
	s.recordOutcome("submit", st)
	return st, nil
}

func (s *Service) run(ctx context.Context, sessionID, operation string, st State, ev Event) State {
	queue := []Event{ev}
	for step := 0; len(queue) > 0; step++ {
		if step >= maxSteps {
			s.logger.ErrorContext(ctx, "gating loop did not settle", "uuid", st.UUID, "phase", st.Phase)
			return notFound(st, true)
		}
		ev, queue = queue[0], queue[1:]

		from := st.Phase
		next, effects := Transition(st, ev)
		if from == PhaseAutoVerifying && next.Phase != from {
			s.metrics.IncrementAutoVerify(autoVerifyResult(next.Phase))
		}
		if f, ok := ev.(Fetched); ok && f.Err != nil {
			s.metrics.IncrementTransient(operation)
		}
		st = next

		for _, eff := range effects {
			if follow := s.execute(ctx, sessionID, st, eff); follow != nil {
				queue = append(queue, follow)
			}
		}
	}
	return st
}

func (s *Service) execute(ctx context.Context, sessionID string, st State, eff Effect) Event {
	switch e := eff.(type) {
	case FetchProfile:
		result, err := s.fetcher.Fetch(ctx, st.UUID, e.Answers)
		if err != nil {
			s.logger.WarnContext(ctx, "profile fetch failed",
				"uuid", st.UUID,
				"phase", st.Phase,
				"category", fetcher.GetCategory(err),
				"retryable", fetcher.IsRetryable(err),
				"error", err,
			)
		}
		return Fetched{Result: result, Err: err}

	case ReadCache:
		answers, err := s.cache.Read(ctx, sessionID, st.UUID)
		if err != nil {
			s.logger.WarnContext(ctx, "verification cache read failed", "uuid", st.UUID, "error", err)
			return CacheLooked{}
		}
		return CacheLooked{Answers: answers}

	case WriteCache:
		if _, err := s.cache.Write(ctx, sessionID, e.Answers); err != nil {
			s.logger.WarnContext(ctx, "verification cache write failed", "uuid", st.UUID, "error", err)
		}
		return nil

	case ClearCache:
		if err := s.cache.Clear(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "verification cache clear failed", "uuid", st.UUID, "error", err)
		}
		return nil

	case VerifyCaptcha:
		if !s.tokens.spend(e.Token) {
			return CaptchaChecked{Result: captcha.Result{ErrorCodes: []string{captcha.CodeDuplicate}}}
		}
		return CaptchaChecked{Result: s.captcha.Check(ctx, e.Token, e.RemoteIP)}
	}
	return nil
}

func (s *Service) recordOutcome(operation string, st State) {
	failure := ""
	if st.Failure != nil {
		failure = string(st.Failure.Kind)
	}
	s.metrics.IncrementOutcome(operation, string(st.Phase), failure)
}

func autoVerifyResult(p Phase) string {
	if p == PhaseDisplay {
		return "display"
	}
	return "fallback"
}
