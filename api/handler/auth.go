package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase/dashboard"
)

// SessionReader exposes the current auth state.
type SessionReader interface {
	State(ctx context.Context) (domain.AuthState, error)
}

type AuthHandler struct {
	baseHandler
	uc       *dashboard.UseCase
	sessions SessionReader
}

func NewAuthHandler(uc *dashboard.UseCase, sessions SessionReader, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		sessions:    sessions,
	}
}

// @Summary Login
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var form dashboard.LoginForm
	if !h.decode(ctx, &form) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Login(stdCtx, form)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Logout
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"loggedOut": true})
}

// @Summary Current session
// @Tags auth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	state, err := h.sessions.State(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	if !state.IsAuthenticated {
		h.respondError(ctx, stdCtx, domain.ErrNotAuthenticated)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, state.User)
}

// @Summary Change password
// @Tags auth
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(ctx *fasthttp.RequestCtx) {
	var form dashboard.PasswordForm
	if !h.decode(ctx, &form) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ChangePassword(stdCtx, form); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"changed": true})
}
