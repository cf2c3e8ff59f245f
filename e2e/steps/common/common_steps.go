package common

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetStatusCode() int
	GetResponseBody() []byte
	GetResponseField(field string) (interface{}, error)
	GetErrorFields() ([]string, error)
}

// RegisterSteps registers generic availability and assertion steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the formation service is running$`, steps.serviceIsRunning)

	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should match "([^"]*)"$`, steps.responseFieldShouldMatch)
	ctx.Step(`^the response field "([^"]*)" should be null$`, steps.responseFieldShouldBeNull)
	ctx.Step(`^the response should have an error for "([^"]*)"$`, steps.responseShouldHaveErrorFor)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health", nil); err != nil {
		return err
	}
	if s.tc.GetStatusCode() != http.StatusOK {
		return fmt.Errorf("health check returned %d", s.tc.GetStatusCode())
	}
	return nil
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, status int) error {
	if got := s.tc.GetStatusCode(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, s.tc.GetResponseBody())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldMatch(ctx context.Context, field, pattern string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if got := fmt.Sprint(value); !re.MatchString(got) {
		return fmt.Errorf("expected %s to match %q, got %q", field, pattern, got)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeNull(ctx context.Context, field string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if value != nil {
		return fmt.Errorf("expected %s to be null, got %v", field, value)
	}
	return nil
}

func (s *commonSteps) responseShouldHaveErrorFor(ctx context.Context, field string) error {
	fields, err := s.tc.GetErrorFields()
	if err != nil {
		return err
	}
	if !slices.Contains(fields, field) {
		return fmt.Errorf("expected a validation error for %q, got errors for %v", field, fields)
	}
	return nil
}
