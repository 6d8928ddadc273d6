package performancehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/notifications"
	"hrms/internal/domain/performance"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *performance.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *performance.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPerformanceManage)).Post("/cycle", h.handleCreateCycle)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf)).Get("/cycles", h.handleCycles)
		r.With(middleware.RequirePermission(auth.PermPerformanceManage)).Get("/reviews/{cycleID}", h.handleCycleReviews)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf)).Get("/my-review", h.handleMyReview)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf)).Patch("/self-review/{appraisalID}", h.handleSelfReview)
		r.With(middleware.RequirePermission(auth.PermPerformanceManage)).Patch("/manager-review/{appraisalID}", h.handleManagerReview)
		r.With(middleware.RequirePermission(auth.PermPerformanceManage)).Patch("/propose-hike/{appraisalID}", h.handleProposeHike)
		r.With(middleware.RequirePermission(auth.PermPerformanceSelf)).Patch("/accept-hike/{appraisalID}", h.handleAcceptHike)
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

type cycleRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload cycleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	startDate, _ := v.Date("startDate", payload.StartDate)
	endDate, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", startDate, "endDate", endDate)
	if v.Reject(w, requestID) {
		return
	}

	cycle, err := h.Service.CreateCycle(r.Context(), payload.Title, startDate, endDate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_create_failed", "failed to create performance cycle", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "performance.cycle.create", "performance_cycle", cycle.ID, requestID, shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit performance.cycle.create failed", "err", err)
	}
	api.Created(w, cycle, requestID)
}

func (h *Handler) handleCycles(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	cycles, err := h.Service.Cycles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cycle_list_failed", "failed to list performance cycles", requestID)
		return
	}
	api.Success(w, cycles, requestID)
}

func (h *Handler) handleCycleReviews(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	reviews, err := h.Service.CycleReviews(r.Context(), chi.URLParam(r, "cycleID"))
	if errors.Is(err, performance.ErrCycleNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "performance cycle not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_list_failed", "failed to list cycle reviews", requestID)
		return
	}
	api.Success(w, reviews, requestID)
}

func (h *Handler) handleMyReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}

	review, err := h.Service.MyReview(r.Context(), employeeID)
	if errors.Is(err, performance.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "no appraisal in an active cycle", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_failed", "failed to load appraisal", requestID)
		return
	}
	api.Success(w, review, requestID)
}

type selfReviewRequest struct {
	SelfReview string `json:"selfReview"`
}

func (h *Handler) handleSelfReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	appraisalID := chi.URLParam(r, "appraisalID")

	var payload selfReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("selfReview", payload.SelfReview, "selfReview is required")
	if v.Reject(w, requestID) {
		return
	}

	appraisal, err := h.Service.SubmitSelfReview(r.Context(), employeeID, appraisalID, payload.SelfReview)
	if !h.writeAppraisalError(w, err, requestID) {
		return
	}
	api.Success(w, appraisal, requestID)
}

type managerReviewRequest struct {
	ManagerReview string `json:"managerReview"`
	Rating        int    `json:"rating"`
}

func (h *Handler) handleManagerReview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	var payload managerReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("managerReview", payload.ManagerReview, "managerReview is required")
	v.IntRange("rating", payload.Rating, performance.MinRating, performance.MaxRating, "rating must be between 1 and 5")
	if v.Reject(w, requestID) {
		return
	}

	appraisal, err := h.Service.SubmitManagerReview(r.Context(), appraisalID, payload.ManagerReview, payload.Rating)
	if !h.writeAppraisalError(w, err, requestID) {
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "performance.manager-review", "appraisal", appraisal.ID, requestID, shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit performance.manager-review failed", "err", err)
	}
	if err := h.Notify.CreateForEmployee(r.Context(), appraisal.EmployeeID, "performance",
		"Appraisal completed", "Your manager review is in. Check your appraisal for the rating."); err != nil {
		slog.Warn("manager review notification failed", "err", err)
	}
	api.Success(w, appraisal, requestID)
}

type proposeHikeRequest struct {
	Percentage float64 `json:"percentage"`
}

func (h *Handler) handleProposeHike(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	appraisalID := chi.URLParam(r, "appraisalID")

	var payload proposeHikeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Percentage < 0 || payload.Percentage > 100 {
		api.Fail(w, http.StatusBadRequest, "invalid_percentage", "percentage must be between 0 and 100", requestID)
		return
	}

	appraisal, err := h.Service.ProposeHike(r.Context(), appraisalID, payload.Percentage)
	if !h.writeAppraisalError(w, err, requestID) {
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "performance.hike.propose", "appraisal", appraisal.ID, requestID, shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit performance.hike.propose failed", "err", err)
	}
	if err := h.Notify.CreateForEmployee(r.Context(), appraisal.EmployeeID, "performance",
		"Salary hike proposed", "A salary revision has been proposed on your appraisal."); err != nil {
		slog.Warn("hike proposal notification failed", "err", err)
	}
	api.Success(w, appraisal, requestID)
}

func (h *Handler) handleAcceptHike(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID, ok := h.requireEmployee(w, r)
	if !ok {
		return
	}
	appraisalID := chi.URLParam(r, "appraisalID")

	appraisal, err := h.Service.AcceptHike(r.Context(), employeeID, appraisalID)
	if errors.Is(err, performance.ErrNoProposal) {
		api.Fail(w, http.StatusBadRequest, "no_proposal", "no hike proposal exists for this appraisal", requestID)
		return
	}
	if !h.writeAppraisalError(w, err, requestID) {
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), actor.UserID, "performance.hike.accept", "appraisal", appraisal.ID, requestID, shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit performance.hike.accept failed", "err", err)
	}
	if err := h.Notify.CreateForEmployee(r.Context(), appraisal.EmployeeID, "performance",
		"Salary revision applied", "Your accepted hike is now reflected in your base salary."); err != nil {
		slog.Warn("hike acceptance notification failed", "err", err)
	}
	api.Success(w, appraisal, requestID)
}

// writeAppraisalError maps the shared appraisal error set. It returns true
// when err was nil and the caller should proceed.
func (h *Handler) writeAppraisalError(w http.ResponseWriter, err error, requestID string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, performance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "appraisal not found", requestID)
	case errors.Is(err, performance.ErrUnauthorized):
		api.Fail(w, http.StatusForbidden, "unauthorized", "appraisal belongs to another employee", requestID)
	case errors.Is(err, performance.ErrInvalidStage):
		api.Fail(w, http.StatusBadRequest, "invalid_stage", "appraisal is not at the required stage", requestID)
	case errors.Is(err, performance.ErrInvalidRating):
		api.Fail(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "performance_failed", "appraisal operation failed", requestID)
	}
	return false
}
