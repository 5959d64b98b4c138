package middleware

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/security/token"
	"github.com/fastygo/taskflow/pkg/httpcontext"
)

// TokenVerifier checks the signature of a bearer token.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// SessionAuthenticator resolves the user owning the live session token.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// SessionAuth admits requests carrying the token of the open session. When
// verifier is nil only the session lookup is performed.
func SessionAuth(verifier TokenVerifier, sessions SessionAuthenticator, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			raw := extractToken(ctx)
			if raw == "" {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNotAuthenticated)
				return
			}

			var claims *token.Claims
			if verifier != nil {
				var err error
				if claims, err = verifier.Verify(raw); err != nil {
					logger.Warn("invalid jwt token", zap.Error(err))
					reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNotAuthenticated)
					return
				}
			}

			stdCtx, cancel := adapter.Attach(ctx)
			user, err := sessions.Authenticate(stdCtx, raw)
			cancel()
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeNotAuthenticated) {
					logger.Error("session lookup failed", zap.Error(err))
					reject(ctx, fasthttp.StatusInternalServerError, domain.NewError(domain.ErrCodeInternal, "internal error"))
					return
				}
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNotAuthenticated)
				return
			}
			if claims != nil && claims.Subject != user.ID {
				logger.Warn("token subject does not match session", zap.String("subject", claims.Subject))
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNotAuthenticated)
				return
			}

			httpcontext.SetUser(ctx, user)
			next(ctx)
		}
	}
}

// RequireManager rejects requests whose authenticated user is not a manager.
// It must run inside SessionAuth.
func RequireManager(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := httpcontext.UserFrom(ctx)
		if !ok {
			reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNotAuthenticated)
			return
		}
		if !user.IsManager() {
			reject(ctx, fasthttp.StatusForbidden, domain.ErrForbidden)
			return
		}
		next(ctx)
	}
}

func reject(ctx *fasthttp.RequestCtx, status int, err *domain.Error) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(transport.NewError(string(err.Code), transport.ErrorBody{Message: err.Message}, nil).String())
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	return token.FromHeader(string(ctx.Request.Header.Peek("Authorization")))
}
