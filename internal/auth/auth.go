// internal/auth/auth.go
//
// Role checks guard the control menu. Roles are a bitmask and a user holds a
// required role only when every bit of it is set. Three authorizers answer
// the check: the backend's UserInfo endpoint, a signed JWT carried in the
// config, or a static grant for local development.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/config"
)

// Role is a permission bitmask.
type Role int

const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// ParseRole accepts "user" or "admin".
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "user":
		return RoleUser, nil
	case "admin", "":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("auth: unknown role %q", name)
	}
}

func (r Role) String() string {
	var parts []string
	if r&RoleUser != 0 {
		parts = append(parts, "user")
	}
	if r&RoleAdmin != 0 {
		parts = append(parts, "admin")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Has reports whether r carries every bit of required.
func (r Role) Has(required Role) bool {
	return r&required == required
}

// Profile is the signed-in operator.
type Profile struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Roles    Role   `json:"roles"`
}

// FullName joins name and last name.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.LastName)
}

// Authorizer answers role checks.
type Authorizer interface {
	Profile(ctx context.Context) (Profile, error)
}

// Authorize reports whether the profile behind a holds required.
func Authorize(ctx context.Context, a Authorizer, required Role) (bool, error) {
	p, err := a.Profile(ctx)
	if err != nil {
		return false, err
	}
	return p.Roles.Has(required), nil
}

// Getter is the slice of the backend client UserInfo uses.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*backend.Response, error)
}

// UserInfo asks the backend who the operator is and caches the first answer.
type UserInfo struct {
	api Getter

	mu      sync.Mutex
	profile *Profile
}

// NewUserInfo wraps api.
func NewUserInfo(api Getter) *UserInfo {
	return &UserInfo{api: api}
}

func (u *UserInfo) Profile(ctx context.Context) (Profile, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.profile != nil {
		return *u.profile, nil
	}
	resp, err := u.api.Get(ctx, backend.PathUserInfo, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: user info: %w", err)
	}
	if resp.Status != http.StatusOK {
		return Profile{}, fmt.Errorf("auth: user info: status %d", resp.Status)
	}
	var p Profile
	if err := resp.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("auth: user info: %w", err)
	}
	u.profile = &p
	return p, nil
}

// Claims is the JWT body accepted by Token.
type Claims struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Roles    Role   `json:"roles"`
	jwt.RegisteredClaims
}

// ErrInvalidToken wraps every signature, expiry and method failure.
var ErrInvalidToken = errors.New("auth: invalid token")

// Token reads the profile from an HS256 token.
type Token struct {
	raw    string
	secret []byte
}

// NewToken validates lazily; construction never fails.
func NewToken(raw, secret string) *Token {
	return &Token{raw: raw, secret: []byte(secret)}
}

func (t *Token) Profile(context.Context) (Profile, error) {
	token, err := jwt.ParseWithClaims(t.raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Profile{}, ErrInvalidToken
	}
	return Profile{Name: claims.Name, LastName: claims.LastName, Roles: claims.Roles}, nil
}

// GenerateToken signs p for ttl. The stub backend and tests use it.
func GenerateToken(secret string, p Profile, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:     p.Name,
		LastName: p.LastName,
		Roles:    p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Static grants a fixed profile.
type Static struct {
	profile Profile
}

// NewStatic returns an authorizer that always answers roles.
func NewStatic(roles Role) *Static {
	return &Static{profile: Profile{Name: "local", Roles: roles}}
}

func (s *Static) Profile(context.Context) (Profile, error) {
	return s.profile, nil
}

// FromConfig builds the configured authorizer and the role the control menu
// requires.
func FromConfig(cfg config.AuthConfig, api Getter) (Authorizer, Role, error) {
	required, err := ParseRole(cfg.RequiredRole)
	if err != nil {
		return nil, 0, err
	}
	switch cfg.Mode {
	case "", "userinfo":
		return NewUserInfo(api), required, nil
	case "token":
		return NewToken(cfg.Token, cfg.Secret), required, nil
	case "none":
		return NewStatic(RoleUser | RoleAdmin), required, nil
	default:
		return nil, 0, fmt.Errorf("auth: unknown mode %q", cfg.Mode)
	}
}
