package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the feature files against a live server. Start the
// server pointed at cmd/mock-profile-api and set E2E_BASE_URL, e.g.
//
//	E2E_BASE_URL=http://localhost:3000 go test ./...
//
// Scenarios tagged @captcha also need the server configured with the
// reCAPTCHA test keys, which accept any token.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		t.Skip("E2E_BASE_URL not set")
	}
	tags := "~@captcha"
	if os.Getenv("E2E_CAPTCHA") == "true" {
		tags = ""
	}

	tc := NewTestContext(baseURL)
	suite := godog.TestSuite{
		Name: "donorprofile",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Tags:     tags,
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature tests failed")
	}
}
