package service_test

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formation/internal/audit"
	"formation/internal/formation/fixtures"
	"formation/internal/formation/service"
	"formation/internal/formation/store/application"
	"formation/internal/formation/store/draft"
	"formation/internal/formation/validation"
	"formation/pkg/requestcontext"
)

var referenceShape = regexp.MustCompile(`^BVI-2026-[A-Z0-9]{6}$`)

func newInMemoryService() (*service.Service, *audit.InMemoryStore) {
	events := audit.NewInMemoryStore()
	svc := service.New(application.NewInMemoryStore(), draft.NewInMemoryStore(),
		service.WithAuditPublisher(audit.NewPublisher(events)),
	)
	return svc, events
}

func TestConcurrentSubmissionsGetDistinctReferences(t *testing.T) {
	svc, events := newInMemoryService()
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	const submissions = 50
	refs := make(chan string, submissions)
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := svc.Submit(ctx, fixtures.ValidPayload())
			if assert.NoError(t, err) {
				refs <- app.ReferenceNumber.String()
			}
		}()
	}
	wg.Wait()
	close(refs)

	seen := make(map[string]bool)
	for ref := range refs {
		assert.Regexp(t, referenceShape, ref)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
	assert.Len(t, seen, submissions)
	assert.Len(t, events.ListByAction(audit.EventApplicationSubmitted), submissions)
}

func TestReviewLifecycle(t *testing.T) {
	svc, events := newInMemoryService()
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	app, err := svc.Submit(ctx, fixtures.ValidPayload())
	require.NoError(t, err)
	ref := app.ReferenceNumber.String()

	for _, step := range []string{"under_review", "approved", "completed"} {
		_, err := svc.TransitionStatus(ctx, ref, step, "moved to "+step)
		require.NoError(t, err, step)
	}

	got, err := svc.GetByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(got.Status))
	assert.Equal(t, "moved to under_review\nmoved to approved\nmoved to completed", got.Notes)
	require.NotNil(t, got.ProcessedAt)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CompletedThisMonth)
	assert.Equal(t, int64(0), stats.Pending)

	require.NoError(t, svc.Delete(ctx, ref))
	_, err = svc.GetByReference(ctx, ref)
	assert.Error(t, err)
	assert.Len(t, events.ListByAction(audit.EventApplicationStatusChanged), 3)
	assert.Len(t, events.ListByAction(audit.EventApplicationDeleted), 1)
}

func TestSaveDraftIsIdempotent(t *testing.T) {
	svc, _ := newInMemoryService()
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(5 * time.Minute)
	sessionID := "sess-42"
	payload := &validation.DraftPayload{
		SessionID:   validation.NewText(sessionID),
		CurrentStep: validation.NumericFromString("2"),
		FormData:    json.RawMessage(`{"company_info":{"company_name":"Harbour"}}`),
	}

	_, err := svc.SaveDraft(requestcontext.WithTime(context.Background(), first), payload)
	require.NoError(t, err)
	_, err = svc.SaveDraft(requestcontext.WithTime(context.Background(), second), payload)
	require.NoError(t, err)

	d, found, err := svc.GetDraft(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, d.CurrentStep)
	assert.JSONEq(t, string(payload.FormData), string(d.FormData))
	assert.Equal(t, first, d.CreatedAt)
	assert.Equal(t, second, d.LastSavedAt)
}
