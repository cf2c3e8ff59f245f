package formation

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

//go:embed testdata/application.json
var applicationJSON []byte

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers company formation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &formationSteps{tc: tc}

	// Application building steps
	ctx.Step(`^a valid company formation application$`, steps.validApplication)
	ctx.Step(`^the shareholders hold (\d+(?:\.\d+)?) and (\d+(?:\.\d+)?) percent$`, steps.shareholdersHold)
	ctx.Step(`^the first director does not consent to act$`, steps.directorDoesNotConsent)

	// Request steps
	ctx.Step(`^I submit the application$`, steps.submitApplication)
	ctx.Step(`^I check the status of the submitted application$`, steps.checkSubmittedStatus)
	ctx.Step(`^I check the status of reference "([^"]*)"$`, steps.checkStatus)
	ctx.Step(`^I auto-save step (\d+) for session "([^"]*)"$`, steps.autoSave)
	ctx.Step(`^I load the form data for session "([^"]*)"$`, steps.loadFormData)
}

type formationSteps struct {
	tc        TestContext
	payload   map[string]interface{}
	reference string
}

func (s *formationSteps) validApplication(ctx context.Context) error {
	s.payload = nil
	return json.Unmarshal(applicationJSON, &s.payload)
}

func (s *formationSteps) shareholdersHold(ctx context.Context, first, second string) error {
	holders, ok := s.payload["shareholders"].([]interface{})
	if !ok || len(holders) < 2 {
		return fmt.Errorf("application fixture needs two shareholders")
	}
	holders[0].(map[string]interface{})["share_percentage"] = first
	holders[1].(map[string]interface{})["share_percentage"] = second
	return nil
}

func (s *formationSteps) directorDoesNotConsent(ctx context.Context) error {
	directors, ok := s.payload["directors"].([]interface{})
	if !ok || len(directors) == 0 {
		return fmt.Errorf("application fixture has no directors")
	}
	directors[0].(map[string]interface{})["consent_to_act"] = false
	return nil
}

func (s *formationSteps) submitApplication(ctx context.Context) error {
	if err := s.tc.POST("/v1/company-formation/", s.payload); err != nil {
		return err
	}
	if ref, err := s.tc.GetResponseField("data.reference_number"); err == nil {
		s.reference = fmt.Sprint(ref)
	}
	return nil
}

func (s *formationSteps) checkSubmittedStatus(ctx context.Context) error {
	if s.reference == "" {
		return fmt.Errorf("no application was submitted in this scenario")
	}
	return s.checkStatus(ctx, s.reference)
}

func (s *formationSteps) checkStatus(ctx context.Context, reference string) error {
	return s.tc.GET("/v1/company-formation/status/"+reference, nil)
}

func (s *formationSteps) autoSave(ctx context.Context, step int, sessionID string) error {
	if s.payload == nil {
		if err := s.validApplication(ctx); err != nil {
			return err
		}
	}
	return s.tc.POST("/v1/company-formation/auto-save", map[string]interface{}{
		"session_id":   sessionID,
		"current_step": step,
		"form_data":    s.payload,
	})
}

func (s *formationSteps) loadFormData(ctx context.Context, sessionID string) error {
	return s.tc.GET("/v1/company-formation/form-data?session_id="+sessionID, nil)
}
