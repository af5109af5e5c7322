package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"direct_messenger/internal/config"
	"direct_messenger/internal/domain"
	"direct_messenger/internal/repository"
	"direct_messenger/pkg/logger"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testConfig() *config.Config {
	return &config.Config{
		Auth:      config.AuthConfig{TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost},
		RateLimit: config.RateLimitConfig{Requests: 3, Window: time.Minute},
	}
}

func newTestServices(t *testing.T) (*Services, *repository.Repositories) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	return newServices(repos, testConfig(), fixedClock, logger.Nop()), repos
}

func register(t *testing.T, svc *Services, username string) *AuthResult {
	t.Helper()
	result, err := svc.Auth.Register(context.Background(), RegisterInput{
		Email:    username + "@x.com",
		Username: username,
		Password: "secret-" + username,
	})
	require.NoError(t, err)
	return result
}

func userOf(t *testing.T, repos *repository.Repositories, result *AuthResult) *domain.User {
	t.Helper()
	user, err := repos.User.GetByID(context.Background(), result.User.ID)
	require.NoError(t, err)
	return user
}

// tickingClock advances by a millisecond on every reading.
func tickingClock() Clock {
	var (
		mu  sync.Mutex
		now = testNow
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}

func newTickingServices(t *testing.T) (*Services, *repository.Repositories) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	return newServices(repos, testConfig(), tickingClock(), logger.Nop()), repos
}
