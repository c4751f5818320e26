package e2e

import (
	"github.com/cucumber/godog"

	"roster/e2e/steps/common"
	"roster/e2e/steps/invite"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Generic requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Invite flow steps
	invite.RegisterSteps(ctx, tc)
}
