package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

type ctxKey int

const actorKey ctxKey = iota

type authClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens issued by the identity service
// and turns their claims into a domain.Actor.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for the shared HMAC secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs a token for actor. The service itself never logs users
// in; this exists for local tooling and tests.
func (a *Authenticator) IssueToken(actor domain.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := authClaims{
		UserID: actor.UserID,
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token and stores the
// caller's Actor in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.authenticate(r.Header.Get("Authorization"))
		if err != nil {
			respondError(w, http.StatusUnauthorized, err.Error(), nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (a *Authenticator) authenticate(header string) (domain.Actor, error) {
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return domain.Actor{}, errors.New("missing bearer token")
	}
	tokenString := strings.TrimSpace(header[len("Bearer "):])

	token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*authClaims)
	if !ok || claims.UserID == "" {
		return domain.Actor{}, errors.New("invalid token claims")
	}

	role := domain.RoleUser
	if claims.Role == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}
	return domain.Actor{UserID: claims.UserID, Role: role}, nil
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the authenticated caller stored by Middleware.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}
