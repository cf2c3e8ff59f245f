package e2e

import (
	"github.com/cucumber/godog"

	"formation/e2e/steps/common"
	"formation/e2e/steps/formation"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (service availability, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register company formation steps
	formation.RegisterSteps(ctx, tc)
}
