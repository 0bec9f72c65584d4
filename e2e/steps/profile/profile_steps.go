package profile

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	Reset()
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// The reCAPTCHA test secret accepts any token, but the server refuses to see
// one twice, so every submission carries a fresh one.
var tokenSeq atomic.Int64

func nextCaptchaToken() string {
	return fmt.Sprintf("e2e-%d-%d", time.Now().UnixNano(), tokenSeq.Add(1))
}

// RegisterSteps registers profile step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &profileSteps{tc: tc}

	ctx.Step(`^I open the profile "([^"]*)"$`, steps.openProfile)
	ctx.Step(`^I request the profile state "([^"]*)"$`, steps.requestState)
	ctx.Step(`^I submit answers for "([^"]*)":$`, steps.submitAnswers)
	ctx.Step(`^I start a new browser session$`, steps.newSession)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the page should contain "([^"]*)"$`, steps.pageShouldContain)
	ctx.Step(`^the page should not contain "([^"]*)"$`, steps.pageShouldNotContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response should have field "([^"]*)"$`, steps.shouldHaveField)
	ctx.Step(`^the response should not have field "([^"]*)"$`, steps.shouldNotHaveField)
}

type profileSteps struct {
	tc TestContext
}

func (s *profileSteps) openProfile(ctx context.Context, uuid string) error {
	return s.tc.GET("/public-profile/" + uuid)
}

func (s *profileSteps) requestState(ctx context.Context, uuid string) error {
	return s.tc.GET("/api/public-profiles/" + uuid)
}

func (s *profileSteps) submitAnswers(ctx context.Context, uuid string, table *godog.Table) error {
	formData := map[string]string{}
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected two columns, got %d", len(row.Cells))
		}
		formData[row.Cells[0].Value] = row.Cells[1].Value
	}
	return s.tc.POST("/api/verify-profile", map[string]any{
		"uuid":         uuid,
		"captchaToken": nextCaptchaToken(),
		"formData":     formData,
	})
}

func (s *profileSteps) newSession(ctx context.Context) error {
	s.tc.Reset()
	return nil
}

func (s *profileSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.GetLastResponseStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, truncate(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *profileSteps) pageShouldContain(ctx context.Context, text string) error {
	if !strings.Contains(string(s.tc.GetLastResponseBody()), text) {
		return fmt.Errorf("expected page to contain %q", text)
	}
	return nil
}

func (s *profileSteps) pageShouldNotContain(ctx context.Context, text string) error {
	if strings.Contains(string(s.tc.GetLastResponseBody()), text) {
		return fmt.Errorf("expected page not to contain %q", text)
	}
	return nil
}

func (s *profileSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, got)
	}
	return nil
}

func (s *profileSteps) shouldHaveField(ctx context.Context, field string) error {
	_, err := s.tc.GetResponseField(field)
	return err
}

func (s *profileSteps) shouldNotHaveField(ctx context.Context, field string) error {
	if _, err := s.tc.GetResponseField(field); err == nil {
		return fmt.Errorf("expected no %q field in response", field)
	}
	return nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
