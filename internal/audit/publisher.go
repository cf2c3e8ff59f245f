package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"formation/pkg/requestcontext"
)

// Publisher enriches events from the request context and hands them to a
// store. Pair it with a Queue to make emission non-blocking.
type Publisher struct {
	store Store
	now   func() time.Time
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store, now: time.Now}
}

// Emit fills ID, category, timestamp, request id, actor and client when they
// are unset, then appends the event.
func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.Category == "" {
		base.Category = base.Action.Category()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = p.now().UTC()
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	if base.ActorID == "" {
		base.ActorID = requestcontext.AdminSubject(ctx)
	}
	if base.Client == "" {
		base.Client = DescribeClient(requestcontext.UserAgent(ctx))
	}
	return p.store.Append(ctx, base)
}

// DescribeClient reduces a user agent to "Browser Version / OS" so events
// identify the channel without storing the raw header.
func DescribeClient(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return ""
	}
	parsed := useragent.New(ua)
	if parsed.Bot() {
		name, _ := parsed.Browser()
		if name == "" {
			return "bot"
		}
		return "bot " + name
	}
	name, version := parsed.Browser()
	if major, _, found := strings.Cut(version, "."); found {
		version = major
	}
	client := strings.TrimSpace(fmt.Sprintf("%s %s", name, version))
	if os := parsed.OS(); os != "" {
		if client == "" {
			return os
		}
		client += " / " + os
	}
	return client
}
