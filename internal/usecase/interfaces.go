package usecase

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// CredentialService issues and validates bearer credentials bound to a user id.
type CredentialService interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	// Validate returns the user id bound to token or an error if it is invalid or expired.
	Validate(token string) (userID string, err error)
}

type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Compare(hash string, password []byte) error
}

// EventPublisher delivers activity events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.ActivityEvent) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, entity.ActivityEvent) error { return nil }

// publish sends event and only logs failures: the write it describes already happened.
func publish(ctx context.Context, p EventPublisher, event entity.ActivityEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Printf("⚠️ event %s for %s not published: %v", event.Type, event.EntityID, err)
	}
}
