package handler

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/usecase/dashboard"
)

// EmployeeReader is the query side of the directory.
type EmployeeReader interface {
	ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
	ActiveEmployees(ctx context.Context) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	Stats(ctx context.Context) domain.EmployeeStats
	AvailableSkills() []string
	UsedSkills(ctx context.Context) []string
	Departments(ctx context.Context) []string
}

type EmployeeHandler struct {
	baseHandler
	uc        *dashboard.UseCase
	directory EmployeeReader
}

func NewEmployeeHandler(uc *dashboard.UseCase, directory EmployeeReader, adapter *httpcontext.Adapter, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		directory:   directory,
	}
}

// @Summary List employees
// @Tags employees
// @Router /api/v1/employees [get]
func (h *EmployeeHandler) GetEmployees(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	employees, err := h.directory.ListEmployees(stdCtx, transport.EmployeeQuery(ctx.QueryArgs()))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, employees, len(employees))
}

// @Summary List assignable employees
// @Tags directory
// @Router /api/v1/directory/active [get]
func (h *EmployeeHandler) GetActive(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	employees, err := h.directory.ActiveEmployees(stdCtx)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, employees, len(employees))
}

// @Summary Get employee
// @Tags employees
// @Router /api/v1/employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	employee, err := h.directory.GetEmployee(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, employee)
}

// @Summary Create employee
// @Tags employees
// @Router /api/v1/employees [post]
func (h *EmployeeHandler) CreateEmployee(ctx *fasthttp.RequestCtx) {
	var form dashboard.EmployeeForm
	if !h.decode(ctx, &form) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateEmployee(stdCtx, form)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update employee
// @Tags employees
// @Router /api/v1/employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(ctx *fasthttp.RequestCtx) {
	var patch domain.EmployeePatch
	if !h.decode(ctx, &patch) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateEmployee(stdCtx, pathParam(ctx, "id"), patch)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Toggle employee status
// @Tags employees
// @Router /api/v1/employees/{id}/toggle [post]
func (h *EmployeeHandler) ToggleStatus(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.ToggleEmployeeStatus(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Reset employee password
// @Tags employees
// @Router /api/v1/employees/{id}/reset-password [post]
func (h *EmployeeHandler) ResetPassword(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	reset, err := h.uc.ResetEmployeePassword(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, reset)
}

// @Summary Delete employee
// @Tags employees
// @Router /api/v1/employees/{id} [delete]
func (h *EmployeeHandler) DeleteEmployee(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteEmployee(stdCtx, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Employee statistics
// @Tags directory
// @Router /api/v1/directory/stats [get]
func (h *EmployeeHandler) Stats(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, h.directory.Stats(stdCtx))
}

// @Summary Skill catalogue
// @Tags directory
// @Router /api/v1/directory/skills [get]
func (h *EmployeeHandler) Skills(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondSuccess(ctx, http.StatusOK, transport.SkillsResponse{
		Available:   h.directory.AvailableSkills(),
		Used:        h.directory.UsedSkills(stdCtx),
		Departments: h.directory.Departments(stdCtx),
	})
}
