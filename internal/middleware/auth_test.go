package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/security/token"
	"github.com/fastygo/taskflow/pkg/httpcontext"
)

type stubSessions struct {
	token string
	user  *domain.User
	err   error
}

func (s stubSessions) Authenticate(_ context.Context, raw string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if raw != s.token {
		return nil, domain.ErrNotAuthenticated
	}
	return s.user, nil
}

type stubVerifier struct {
	subject string
	err     error
}

func (v stubVerifier) Verify(string) (*token.Claims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return &token.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: v.subject}}, nil
}

func request(header string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/api/v1/tasks")
	if header != "" {
		ctx.Request.Header.Set("Authorization", header)
	}
	return ctx
}

func TestSessionAuth(t *testing.T) {
	manager := &domain.User{ID: "1", Username: "manager1", Role: domain.RoleManager}
	sessions := stubSessions{token: "tok", user: manager}

	var seen *domain.User
	next := func(ctx *fasthttp.RequestCtx) {
		seen, _ = httpcontext.UserFrom(ctx)
		ctx.SetStatusCode(fasthttp.StatusOK)
	}

	cases := []struct {
		name     string
		verifier TokenVerifier
		sessions SessionAuthenticator
		header   string
		status   int
	}{
		{name: "missing header", sessions: sessions, status: fasthttp.StatusUnauthorized},
		{name: "bearer session token", sessions: sessions, header: "Bearer tok", status: fasthttp.StatusOK},
		{name: "bare session token", sessions: sessions, header: "tok", status: fasthttp.StatusOK},
		{name: "stale token", sessions: sessions, header: "Bearer old", status: fasthttp.StatusUnauthorized},
		{name: "bad signature", verifier: stubVerifier{err: errors.New("signature is invalid")}, sessions: sessions, header: "Bearer tok", status: fasthttp.StatusUnauthorized},
		{name: "subject mismatch", verifier: stubVerifier{subject: "2"}, sessions: sessions, header: "Bearer tok", status: fasthttp.StatusUnauthorized},
		{name: "verified", verifier: stubVerifier{subject: "1"}, sessions: sessions, header: "Bearer tok", status: fasthttp.StatusOK},
		{name: "storage failure", sessions: stubSessions{err: domain.WrapError(domain.ErrCodeInternal, "load session", errors.New("disk"))}, header: "Bearer tok", status: fasthttp.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			ctx := request(tc.header)
			SessionAuth(tc.verifier, tc.sessions, nil, nil)(next)(ctx)

			assert.Equal(t, tc.status, ctx.Response.StatusCode())
			if tc.status == fasthttp.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "manager1", seen.Username)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequireManager(t *testing.T) {
	called := false
	handler := RequireManager(func(ctx *fasthttp.RequestCtx) { called = true })

	ctx := request("")
	handler(ctx)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())

	ctx = request("")
	httpcontext.SetUser(ctx, &domain.User{ID: "2", Role: domain.RoleEmployee})
	handler(ctx)
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "FORBIDDEN")
	assert.False(t, called)

	ctx = request("")
	httpcontext.SetUser(ctx, &domain.User{ID: "1", Role: domain.RoleManager})
	handler(ctx)
	assert.True(t, called)
}
