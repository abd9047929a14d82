package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hernesto-SRL/management-front/internal/backend"
	"github.com/Hernesto-SRL/management-front/internal/config"
	"github.com/Hernesto-SRL/management-front/internal/stubapi"
)

func TestRoleBitmask(t *testing.T) {
	cases := []struct {
		roles, required Role
		want            bool
	}{
		{RoleUser, RoleUser, true},
		{RoleUser, RoleAdmin, false},
		{RoleAdmin, RoleAdmin, true},
		{RoleUser | RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleUser | RoleAdmin, false},
		{0, RoleUser, false},
	}
	for _, tc := range cases {
		if got := tc.roles.Has(tc.required); got != tc.want {
			t.Fatalf("%s has %s = %v, want %v", tc.roles, tc.required, got, tc.want)
		}
	}
	if (RoleUser | RoleAdmin).String() != "user|admin" || Role(0).String() != "none" {
		t.Fatalf("unexpected role names")
	}
}

func TestUserInfoCachesProfile(t *testing.T) {
	stub := stubapi.New(stubapi.WithUser(stubapi.UserInfo{Name: "Ana", LastName: "Paz", Roles: 1}))
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	a := NewUserInfo(backend.New(srv.URL, time.Second))

	ok, err := Authorize(context.Background(), a, RoleAdmin)
	if err != nil || ok {
		t.Fatalf("user-only profile passed admin check: ok=%v err=%v", ok, err)
	}
	ok, err = Authorize(context.Background(), a, RoleUser)
	if err != nil || !ok {
		t.Fatalf("user check: ok=%v err=%v", ok, err)
	}
	p, _ := a.Profile(context.Background())
	if p.FullName() != "Ana Paz" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if got := stub.Calls("GET /api/User/UserInfo"); got != 1 {
		t.Fatalf("profile should be fetched once, got %d", got)
	}
}

func TestUserInfoFailureIsNotCached(t *testing.T) {
	stub := stubapi.New()
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	a := NewUserInfo(backend.New(srv.URL, time.Second))
	stub.Fail("GET /api/User/UserInfo", http.StatusUnauthorized)
	if _, err := a.Profile(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	stub.Fail("GET /api/User/UserInfo", 0)
	if ok, err := Authorize(context.Background(), a, RoleAdmin); err != nil || !ok {
		t.Fatalf("retry: ok=%v err=%v", ok, err)
	}
}

func TestTokenAuthorizer(t *testing.T) {
	raw, err := GenerateToken("s3cret", Profile{Name: "Jefe", Roles: RoleUser | RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ok, err := Authorize(context.Background(), NewToken(raw, "s3cret"), RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("valid token: ok=%v err=%v", ok, err)
	}
	if _, err := NewToken(raw, "other").Profile(context.Background()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: %v", err)
	}
	expired, _ := GenerateToken("s3cret", Profile{Roles: RoleAdmin}, -time.Minute)
	if _, err := NewToken(expired, "s3cret").Profile(context.Background()); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	a, required, err := FromConfig(config.AuthConfig{Mode: "none", RequiredRole: "user"}, nil)
	if err != nil || required != RoleUser {
		t.Fatalf("none mode: required=%v err=%v", required, err)
	}
	if _, ok := a.(*Static); !ok {
		t.Fatalf("unexpected authorizer %T", a)
	}
	if _, required, _ := FromConfig(config.AuthConfig{}, nil); required != RoleAdmin {
		t.Fatalf("default required role should be admin")
	}
	if _, _, err := FromConfig(config.AuthConfig{Mode: "ldap"}, nil); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if _, _, err := FromConfig(config.AuthConfig{RequiredRole: "root"}, nil); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
