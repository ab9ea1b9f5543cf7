package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/planpin/backend/api/transport"
	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/pkg/httpcontext"
	planUC "github.com/planpin/backend/usecase/plan"
	taskUC "github.com/planpin/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc   *taskUC.UseCase
	plan *planUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, plan *planUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		plan:        plan,
	}
}

// @Summary List the user's tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Place a marker from percentage coordinates
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.CreateTaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	checklist := make([]domain.ChecklistItem, 0, len(req.Checklist))
	for _, item := range req.Checklist {
		checklist = append(checklist, domain.ChecklistItem{
			Text:   item.Text,
			Status: domain.StatusNotStarted,
		})
	}
	// Item ids are assigned here so the document validates; all items start
	// not-started regardless of what the client sent.
	for i := range checklist {
		checklist[i].ID = uuid.NewString()
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, &domain.Task{
		UserID:    userID,
		Title:     req.Title,
		XPct:      req.XPct,
		YPct:      req.YPct,
		Checklist: checklist,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Reposition a marker
// @Tags tasks
// @Router /api/v1/tasks/{id}/position [patch]
func (h *TaskHandler) UpdatePosition(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.taskID(ctx)
	if id == "" {
		return
	}

	var req transport.PositionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdatePosition(stdCtx, userID, id, req.XPct, req.YPct)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Rename a task
// @Tags tasks
// @Router /api/v1/tasks/{id}/title [patch]
func (h *TaskHandler) UpdateTitle(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.taskID(ctx)
	if id == "" {
		return
	}

	var req transport.TitleRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTitle(stdCtx, userID, id, req.Title)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete a task and its checklist
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.taskID(ctx)
	if id == "" {
		return
	}
	sessionID := string(ctx.Request.Header.Peek("X-Session-ID"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.plan.DeleteTask(stdCtx, sessionID, userID, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Append a checklist item
// @Tags tasks
// @Router /api/v1/tasks/{id}/checklist [post]
func (h *TaskHandler) AddChecklistItem(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.taskID(ctx)
	if id == "" {
		return
	}

	var req transport.ChecklistAddRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Text == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	item, err := h.uc.AddChecklistItem(stdCtx, userID, id, req.Text)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, item)
}

// @Summary Change a checklist item's status
// @Tags tasks
// @Router /api/v1/tasks/{id}/checklist/{itemId} [patch]
func (h *TaskHandler) UpdateChecklistStatus(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	id := h.taskID(ctx)
	if id == "" {
		return
	}
	itemID, _ := ctx.UserValue("itemId").(string)
	if itemID == "" {
		h.respondInvalid(ctx, "missing checklist item id")
		return
	}

	var req transport.ChecklistStatusRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	status := domain.ChecklistStatus(req.Status)
	if !status.Valid() {
		h.respondInvalid(ctx, "unknown checklist status")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateChecklistStatus(stdCtx, userID, id, itemID, status)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
	}
	return id
}
