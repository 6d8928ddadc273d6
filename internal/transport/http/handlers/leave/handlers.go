package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notifications"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leaves", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveSelf)).Post("/apply", h.handleApply)
		r.With(middleware.RequirePermission(auth.PermLeaveSelf)).Get("/my-history", h.handleMyHistory)
		r.With(middleware.RequirePermission(auth.PermLeaveSelf)).Get("/balance", h.handleBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveDecide)).Get("/pending", h.handlePending)
		r.With(middleware.RequirePermission(auth.PermLeaveDecide)).Post("/action/{requestID}", h.handleAction)
	})
}

func (h *Handler) requireEmployee(w http.ResponseWriter, r *http.Request) (string, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return "", false
	}
	if user.EmployeeID == "" {
		api.Fail(w, http.StatusBadRequest, "no_profile", "no employee profile linked to this login", requestID)
		return "", false
	}
	return user.EmployeeID, true
}

type applyRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	var payload applyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Type = strings.ToUpper(strings.TrimSpace(payload.Type))

	v := shared.NewValidator()
	if !leave.ValidType(payload.Type) {
		v.Add("type", "must be SICK, CASUAL or EARNED")
	}
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", startDate, "endDate", endDate)
	if v.Reject(w, requestID) {
		return
	}

	req, err := h.Service.Apply(r.Context(), employeeID, payload.Type, payload.Reason, startDate, endDate)
	var insufficient *leave.InsufficientBalanceError
	switch {
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", "start date cannot be after end date", requestID)
		return
	case errors.As(err, &insufficient):
		api.Fail(w, http.StatusBadRequest, "insufficient_balance", insufficient.Error(), requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "leave_apply_failed", "failed to apply for leave", requestID)
		return
	}
	api.Created(w, req, requestID)
}

func (h *Handler) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	requests, err := h.Service.MyHistory(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_history_failed", "failed to load leave history", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	balances, err := h.Service.Balances(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balance_failed", "failed to load leave balances", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	requests, err := h.Service.Pending(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_pending_failed", "failed to load pending requests", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

type actionRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	leaveRequestID := chi.URLParam(r, "requestID")

	var payload actionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.Decision = strings.ToUpper(strings.TrimSpace(payload.Decision))
	if payload.Decision != leave.StatusApproved && payload.Decision != leave.StatusRejected {
		api.Fail(w, http.StatusBadRequest, "invalid_decision", "decision must be APPROVED or REJECTED", requestID)
		return
	}

	req, err := h.Service.Process(r.Context(), leaveRequestID, payload.Decision, payload.Comment)
	var insufficient *leave.InsufficientBalanceError
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", requestID)
		return
	case errors.Is(err, leave.ErrAlreadyProcessed):
		api.Fail(w, http.StatusBadRequest, "already_processed", "request is already processed", requestID)
		return
	case errors.As(err, &insufficient):
		api.Fail(w, http.StatusBadRequest, "insufficient_balance", insufficient.Error(), requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "leave_action_failed", "failed to process leave request", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "leave.decision", "leave_request", req.ID, requestID, shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit leave.decision failed", "err", err)
	}
	title := fmt.Sprintf("Leave request %s", strings.ToLower(req.Status))
	body := fmt.Sprintf("Your %s leave request (%d days) was %s.", strings.ToLower(req.Type), req.DaysCount, strings.ToLower(req.Status))
	if err := h.Notify.CreateForEmployee(r.Context(), req.EmployeeID, "leave", title, body); err != nil {
		slog.Warn("leave decision notification failed", "err", err)
	}
	api.Success(w, req, requestID)
}
