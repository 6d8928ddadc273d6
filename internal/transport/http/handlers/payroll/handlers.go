package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/payroll"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *payroll.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollManage)).Post("/generate", h.handleGenerate)
		r.With(middleware.RequirePermission(auth.PermPayrollManage)).Get("/all", h.handleAll)
		r.With(middleware.RequirePermission(auth.PermPayrollManage)).Post("/pay/{payrollID}", h.handleMarkPaid)
		r.With(middleware.RequirePermission(auth.PermPayrollSelf)).Get("/my-history", h.handleMyHistory)
		r.With(middleware.RequirePermission(auth.PermPayrollSelf)).Get("/payslip/{payrollID}", h.handlePayslip)
	})
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func normalizeMonth(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, name := range monthNames {
		if strings.ToLower(name) == normalized {
			return name
		}
	}
	return raw
}

type generateRequest struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("month", payload.Month, "month is required")
	v.Enum("month", payload.Month, monthNames, "must be a month name, e.g. January")
	v.IntRange("year", payload.Year, 2000, 2100, "year is out of range")
	if v.Reject(w, requestID) {
		return
	}
	month := normalizeMonth(payload.Month)

	result, err := h.Service.Generate(r.Context(), month, payload.Year)
	switch {
	case errors.Is(err, payroll.ErrAlreadyGenerated):
		api.Fail(w, http.StatusBadRequest, "already_generated",
			fmt.Sprintf("payroll for %s %d has already been generated", month, payload.Year), requestID)
		return
	case errors.Is(err, payroll.ErrNoEmployees):
		api.Fail(w, http.StatusBadRequest, "no_employees", "no employees to generate payroll for", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "payroll_generate_failed", "failed to generate payroll", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "payroll.generate", "payroll_batch",
		fmt.Sprintf("%s-%d", month, payload.Year), requestID, shared.ClientIP(r), result); err != nil {
		slog.Warn("audit payroll.generate failed", "err", err)
	}
	if err := h.Notify.Broadcast(r.Context(), "payroll",
		fmt.Sprintf("Payslip for %s %d", month, payload.Year),
		"Your payslip has been generated and is ready to download."); err != nil {
		slog.Warn("payroll generation notification failed", "err", err)
	}
	api.Created(w, result, requestID)
}

func (h *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	records, err := h.Service.All(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_list_failed", "failed to list payroll records", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	payrollID := chi.URLParam(r, "payrollID")

	rec, err := h.Service.MarkPaid(r.Context(), payrollID, time.Now())
	switch {
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", requestID)
		return
	case errors.Is(err, payroll.ErrAlreadyPaid):
		api.Fail(w, http.StatusBadRequest, "already_paid", "payroll record is already paid", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "payroll_pay_failed", "failed to mark payroll as paid", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "payroll.pay", "payroll", rec.ID, requestID, shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit payroll.pay failed", "err", err)
	}
	api.Success(w, rec, requestID)
}

func (h *Handler) handleMyHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if user.EmployeeID == "" {
		api.Success(w, []payroll.Record{}, requestID)
		return
	}

	records, err := h.Service.MyHistory(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_history_failed", "failed to load payroll history", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	payrollID := chi.URLParam(r, "payrollID")

	// Admins may fetch any slip; employees only their own.
	restrict := user.EmployeeID
	if auth.RoleHasPermission(user.Role, auth.PermPayrollManage) {
		restrict = ""
	} else if restrict == "" {
		api.Fail(w, http.StatusBadRequest, "no_profile", "no employee profile linked to this login", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", payrollID))
	err := h.Service.PayslipPDF(r.Context(), payrollID, restrict, w)
	if errors.Is(err, payroll.ErrNotFound) {
		w.Header().Del("Content-Disposition")
		w.Header().Set("Content-Type", "application/json")
		api.Fail(w, http.StatusNotFound, "not_found", "payroll record not found", requestID)
		return
	}
	if err != nil {
		slog.Error("payslip render failed", "err", err, "requestId", requestID)
	}
}
