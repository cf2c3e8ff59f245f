package validation

import (
	"bytes"
	"encoding/json"
	"time"

	"formation/internal/formation/models"
	dErrors "formation/pkg/domain-errors"
)

// DraftPayload is the auto-save body. form_data is kept raw; it is only
// required to be a JSON object.
type DraftPayload struct {
	SessionID   Text            `json:"session_id"`
	CurrentStep Numeric         `json:"current_step"`
	FormData    json.RawMessage `json:"form_data"`
}

// DraftInput is a validated auto-save request.
type DraftInput struct {
	SessionID   string
	CurrentStep int
	FormData    json.RawMessage
}

// ValidateDraft checks an auto-save request and collects every failure.
func ValidateDraft(p *DraftPayload) (*DraftInput, error) {
	if p == nil {
		p = &DraftPayload{}
	}
	c := newChecker(time.Time{})
	in := &DraftInput{}

	if sid, ok := c.requiredText("session_id", p.SessionID, models.MaxSessionIDLength); ok {
		in.SessionID = *sid
	}
	if step, ok := c.positiveInteger("current_step", p.CurrentStep); ok {
		if step > models.MaxDraftStep {
			c.fail("current_step", "The %s field must not be greater than %d.", attribute("current_step"), models.MaxDraftStep)
		} else {
			in.CurrentStep = int(step)
		}
	}
	data := bytes.TrimSpace(p.FormData)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		c.required("form_data")
	case data[0] != '{' || !json.Valid(data):
		c.fail("form_data", "The %s field must be an object.", attribute("form_data"))
	default:
		in.FormData = append(json.RawMessage(nil), data...)
	}

	if !c.fields.Empty() {
		return nil, dErrors.Validation(MessageFailed, c.fields)
	}
	return in, nil
}
