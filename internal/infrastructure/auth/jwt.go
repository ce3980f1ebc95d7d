package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// DefaultTTL is the lifetime of issued tokens when none is configured
const DefaultTTL = 12 * time.Hour

// Config holds JWT settings
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// JWTProvider resolves users from HS256 tokens whose subject is the user id.
// Users are reloaded on every call so role changes take effect immediately.
type JWTProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	users  port.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewJWTProvider creates a token-based IdentityProvider
func NewJWTProvider(cfg Config, users port.UserRepository, logger *zap.Logger) (*JWTProvider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTProvider{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		users:  users,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the user
func (p *JWTProvider) Issue(user *entity.User) (string, error) {
	now := p.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    p.issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// CurrentUser validates the token and loads its user.
// Every failure wraps port.ErrUnauthenticated, except store errors.
func (p *JWTProvider) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, port.ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		p.logger.Debug("Rejected token", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid token", port.ErrUnauthenticated)
	}
	if p.issuer != "" && !claims.VerifyIssuer(p.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer", port.ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", port.ErrUnauthenticated)
	}

	user, err := p.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, domainwf.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", port.ErrUnauthenticated)
	}
	if err != nil {
		p.logger.Error("Failed to load token user", zap.String("user_id", claims.Subject), zap.Error(err))
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

var _ port.IdentityProvider = (*JWTProvider)(nil)
