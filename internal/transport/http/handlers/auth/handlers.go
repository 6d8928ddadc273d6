package authhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Core     *core.Service
	Audit    *audit.Service
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(coreSvc *core.Service, auditSvc *audit.Service, secret string, tokenTTL time.Duration) *Handler {
	return &Handler{Core: coreSvc, Audit: auditSvc, Secret: secret, TokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequirePermission(auth.PermUsersCreate)).Post("/create-user", h.handleCreateUser)
		r.Get("/profile", h.handleProfile)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Portal   string `json:"portal"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        core.Profile `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	v.Enum("portal", payload.Portal, []string{auth.PortalAdmin, auth.PortalEmployee}, "portal must be admin or employee")
	if payload.Portal == "" {
		payload.Portal = auth.PortalEmployee
	}
	if v.Reject(w, requestID) {
		return
	}

	user, hash, err := h.Core.FindUserByEmail(r.Context(), payload.Email)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	if auth.CheckPassword(hash, payload.Password) != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
		return
	}

	if !auth.PortalAllows(payload.Portal, user.Role) {
		// Admin credentials on the employee portal get the generic rejection
		// so account existence never leaks across portals.
		if payload.Portal == auth.PortalEmployee && auth.IsAdminRole(user.Role) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", requestID)
			return
		}
		api.Fail(w, http.StatusForbidden, "access_denied", "this portal does not accept your account", requestID)
		return
	}

	employeeID, err := h.Core.EmployeeIDByUserID(r.Context(), user.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:     user.ID,
		Role:       user.Role,
		EmployeeID: employeeID,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	profile, err := h.Core.GetProfile(r.Context(), user.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), user.ID, "auth.login", "user", user.ID, requestID, shared.ClientIP(r), map[string]string{"portal": payload.Portal}); err != nil {
		slog.Warn("audit auth.login failed", "err", err)
	}
	api.Success(w, loginResponse{AccessToken: token, User: profile}, requestID)
}

type createUserRequest struct {
	EmployeeID string `json:"employeeId"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	if payload.Role == "" {
		payload.Role = auth.RoleEmployee
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employeeId is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if !auth.ValidRole(payload.Role) {
		v.Add("role", "unknown role")
	}
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Core.CreateUserForEmployee(r.Context(), payload.EmployeeID, payload.Email, payload.Password, payload.Role)
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	case errors.Is(err, core.ErrEmailTaken):
		api.Fail(w, http.StatusBadRequest, "email_taken", "email is already in use", requestID)
		return
	case errors.Is(err, core.ErrAlreadyLinked):
		api.Fail(w, http.StatusBadRequest, "already_linked", "employee already has a login", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "auth.user.create", "user", user.ID, requestID, shared.ClientIP(r), map[string]string{"employeeId": payload.EmployeeID, "role": payload.Role}); err != nil {
		slog.Warn("audit auth.user.create failed", "err", err)
	}
	api.Created(w, user, requestID)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	profile, err := h.Core.GetProfile(r.Context(), user.UserID)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "profile not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", requestID)
		return
	}
	api.Success(w, profile, requestID)
}
