package attendancehandler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceSelf)).Post("/clock-in", h.handleClockIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceSelf)).Post("/clock-out", h.handleClockOut)
		r.With(middleware.RequirePermission(auth.PermAttendanceSelf)).Get("/status", h.handleStatus)
		r.With(middleware.RequirePermission(auth.PermAttendanceReports)).Get("/report", h.handleDailyReport)
		r.With(middleware.RequirePermission(auth.PermAttendanceReports)).Get("/monthly", h.handleMonthlyReport)
	})
}

// requireEmployee resolves the caller's employee profile; logins without one
// cannot punch.
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

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.ClockIn(r.Context(), employeeID)
	if errors.Is(err, attendance.ErrAlreadyClockedIn) {
		api.Fail(w, http.StatusBadRequest, "already_clocked_in", "already clocked in today", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "clock_in_failed", "failed to clock in", requestID)
		return
	}
	api.Created(w, rec, requestID)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.ClockOut(r.Context(), employeeID)
	switch {
	case errors.Is(err, attendance.ErrNoActiveClockIn):
		api.Fail(w, http.StatusBadRequest, "not_clocked_in", "no clock-in recorded today", requestID)
		return
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		api.Fail(w, http.StatusBadRequest, "already_clocked_out", "already clocked out today", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "clock_out_failed", "failed to clock out", requestID)
		return
	}
	api.Success(w, rec, requestID)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	status, err := h.Service.Status(r.Context(), user.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "status_failed", "failed to load attendance status", requestID)
		return
	}
	api.Success(w, status, requestID)
}

func (h *Handler) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD", requestID)
			return
		}
		date = parsed
	}

	entries, err := h.Service.DailyReport(r.Context(), date, r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build attendance report", requestID)
		return
	}
	api.Success(w, entries, requestID)
}

func (h *Handler) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	now := time.Now()
	month := int(now.Month())
	year := now.Year()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			api.Fail(w, http.StatusBadRequest, "invalid_month", "month must be between 1 and 12", requestID)
			return
		}
		month = parsed
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year is out of range", requestID)
			return
		}
		year = parsed
	}

	entries, err := h.Service.MonthlyReport(r.Context(), time.Month(month), year, r.URL.Query().Get("departmentId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build monthly report", requestID)
		return
	}
	api.Success(w, entries, requestID)
}
