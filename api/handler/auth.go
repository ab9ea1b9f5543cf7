package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/planpin/backend/api/transport"
	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/pkg/httpcontext"
	planUC "github.com/planpin/backend/usecase/plan"
	sessionUC "github.com/planpin/backend/usecase/session"
)

type AuthHandler struct {
	baseHandler
	uc   *sessionUC.UseCase
	plan *planUC.UseCase
}

func NewAuthHandler(uc *sessionUC.UseCase, plan *planUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		plan:        plan,
	}
}

// @Summary Log in with a display name
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Login(stdCtx, req.Name)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, result)
}

// @Summary Restore the session carried by the bearer token
// @Tags auth
// @Router /api/v1/auth/restore [post]
func (h *AuthHandler) Restore(ctx *fasthttp.RequestCtx) {
	sessionID := h.sessionID(ctx)
	if sessionID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Restore(stdCtx, sessionID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			// Unknown or expired session: the client completes
			// initialization unauthenticated.
			h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "session expired", nil))
			return
		}
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Log out, keeping the user's data on disk
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	sessionID := h.sessionID(ctx)
	if sessionID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, sessionID); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	if h.plan != nil {
		h.plan.EndSession(sessionID)
	}
	h.respondNoContent(ctx)
}
