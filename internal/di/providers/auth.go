package providers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do/v2"

	"github.com/litewiki/litewiki-server/internal/auth"
	"github.com/litewiki/litewiki-server/internal/config"
	"github.com/litewiki/litewiki-server/internal/domain"
	"github.com/litewiki/litewiki-server/internal/id"
	"github.com/litewiki/litewiki-server/internal/logger"
	"github.com/litewiki/litewiki-server/internal/ratelimit"
	"github.com/litewiki/litewiki-server/internal/store"
)

// ProvideVerifier provides the bearer token verifier, provisioning a user
// row for every username named in the configured token map.
func ProvideVerifier(i do.Injector) (auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, username := range cfg.Auth.Tokens {
		_, err := storeHandle.GetUserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			user := &domain.User{
				ID:        id.MustGenerate("user"),
				Username:  username,
				Role:      domain.RoleUser,
				CreatedAt: time.Now().UTC(),
			}
			if err := storeHandle.CreateUser(ctx, user); err != nil {
				return nil, err
			}
			log.Info("Provisioned token user", "username", username)
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return auth.NewStaticVerifier(cfg.Auth.Tokens, storeHandle.Store), nil
}

// RateLimiterHandle wraps the keyed rate limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client request rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	return &RateLimiterHandle{KeyedLimiter: limiter}, nil
}
