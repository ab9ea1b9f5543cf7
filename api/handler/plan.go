package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/planpin/backend/api/transport"
	"github.com/planpin/backend/pkg/geometry"
	"github.com/planpin/backend/pkg/httpcontext"
	planUC "github.com/planpin/backend/usecase/plan"
)

type PlanHandler struct {
	baseHandler
	uc *planUC.UseCase
}

func NewPlanHandler(uc *planUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Feed a pointer event into the plan interaction state machine
// @Tags plan
// @Router /api/v1/plan/events [post]
func (h *PlanHandler) PointerEvent(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	sessionID := h.sessionID(ctx)
	if sessionID == "" {
		return
	}

	var req transport.PointerEventRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	action, err := h.uc.HandlePointer(stdCtx, sessionID, userID, planUC.PointerEvent{
		Kind:         req.Kind,
		X:            req.X,
		Y:            req.Y,
		TargetTaskID: req.TargetTaskID,
		Modifier:     req.Modifier,
		Bounds: geometry.Bounds{
			Left:   req.Bounds.Left,
			Top:    req.Bounds.Top,
			Width:  req.Bounds.Width,
			Height: req.Bounds.Height,
		},
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, action)
}

// @Summary Set the selected task (sidebar path)
// @Tags plan
// @Router /api/v1/plan/selection [put]
func (h *PlanHandler) SetSelection(ctx *fasthttp.RequestCtx) {
	sessionID := h.sessionID(ctx)
	if sessionID == "" {
		return
	}

	var req transport.SelectionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	selected := h.uc.Select(sessionID, req.TaskID)
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"selected": selected})
}

// @Summary Read the selected task
// @Tags plan
// @Router /api/v1/plan/selection [get]
func (h *PlanHandler) GetSelection(ctx *fasthttp.RequestCtx) {
	sessionID := h.sessionID(ctx)
	if sessionID == "" {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"selected": h.uc.Selection(sessionID)})
}
