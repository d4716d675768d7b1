package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
)

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entity.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func eventOfType(t entity.EventType) interface{} {
	return mock.MatchedBy(func(e entity.ActivityEvent) bool { return e.Type == t })
}

// plainHasher keeps tests fast; bcrypt is covered in the security package.
type plainHasher struct{}

func (plainHasher) Hash(password []byte) (string, error) {
	return "plain:" + string(password), nil
}

func (plainHasher) Compare(hash string, password []byte) error {
	if hash != "plain:"+string(password) {
		return errors.New("mismatch")
	}
	return nil
}

// fakeCredentials issues "token-<userID>" tokens.
type fakeCredentials struct{}

func (fakeCredentials) Issue(userID string) (string, time.Time, error) {
	return "token-" + userID, time.Now().Add(time.Hour), nil
}

func (fakeCredentials) Validate(token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", errors.New("invalid token")
	}
	return strings.TrimPrefix(token, "token-"), nil
}

func seedUser(t *testing.T, store *memory.Store, name string) *entity.User {
	t.Helper()
	email := fmt.Sprintf("%s@example.com", strings.ToLower(name))
	user, err := entity.NewUser(name, email, "plain:secret")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}
