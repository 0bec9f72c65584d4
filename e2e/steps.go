package e2e

import (
	"github.com/cucumber/godog"

	"donorprofile/e2e/steps/profile"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	profile.RegisterSteps(ctx, tc)
}
