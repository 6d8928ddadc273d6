package corehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/core"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Audit   *audit.Service
}

func NewHandler(service *core.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employee", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Post("/", h.handleCreateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead)).Get("/{employeeID}", h.handleGetEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Put("/{employeeID}", h.handleUpdateEmployee)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite)).Delete("/{employeeID}", h.handleDeleteEmployee)
	})
	r.Route("/department", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Post("/", h.handleCreateDepartment)
		r.With(middleware.RequirePermission(auth.PermOrgRead)).Get("/", h.handleListDepartments)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Put("/{departmentID}", h.handleUpdateDepartment)
		r.With(middleware.RequirePermission(auth.PermOrgWrite)).Delete("/{departmentID}", h.handleDeleteDepartment)
	})
}

type employeeRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Designation  string `json:"designation"`
	JoiningDate  string `json:"joiningDate"`
	BaseSalary   int64  `json:"baseSalary"`
	DepartmentID string `json:"departmentId"`
}

func (h *Handler) parseEmployeeInput(w http.ResponseWriter, r *http.Request, requestID string) (core.EmployeeInput, bool) {
	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return core.EmployeeInput{}, false
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "firstName is required")
	v.Required("lastName", payload.LastName, "lastName is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("designation", payload.Designation, "designation is required")
	joiningDate, _ := v.Date("joiningDate", payload.JoiningDate)
	if payload.BaseSalary <= 0 {
		v.Add("baseSalary", "must be a positive amount")
	}
	if v.Reject(w, requestID) {
		return core.EmployeeInput{}, false
	}

	return core.EmployeeInput{
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Designation:  payload.Designation,
		JoiningDate:  joiningDate,
		BaseSalary:   payload.BaseSalary,
		DepartmentID: payload.DepartmentID,
	}, true
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	input, ok := h.parseEmployeeInput(w, r, requestID)
	if !ok {
		return
	}

	emp, err := h.Service.CreateEmployee(r.Context(), input)
	if errors.Is(err, core.ErrEmailTaken) {
		api.Fail(w, http.StatusBadRequest, "email_taken", "email is already in use", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "employee.create", "employee", emp.ID, requestID, shared.ClientIP(r), input); err != nil {
		slog.Warn("audit employee.create failed", "err", err)
	}
	api.Created(w, emp, requestID)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	detail, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", requestID)
		return
	}
	api.Success(w, detail, requestID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	input, ok := h.parseEmployeeInput(w, r, requestID)
	if !ok {
		return
	}

	emp, err := h.Service.UpdateEmployee(r.Context(), employeeID, input)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if errors.Is(err, core.ErrEmailTaken) {
		api.Fail(w, http.StatusBadRequest, "email_taken", "email is already in use", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "employee.update", "employee", emp.ID, requestID, shared.ClientIP(r), input); err != nil {
		slog.Warn("audit employee.update failed", "err", err)
	}
	api.Success(w, emp, requestID)
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	err := h.Service.DeleteEmployee(r.Context(), employeeID)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "employee.delete", "employee", employeeID, requestID, shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit employee.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": employeeID}, requestID)
}

type departmentRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestID) {
		return
	}

	dept, err := h.Service.CreateDepartment(r.Context(), payload.Name)
	if errors.Is(err, core.ErrNameTaken) {
		api.Fail(w, http.StatusBadRequest, "name_taken", "department name is already in use", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "department.create", "department", dept.ID, requestID, shared.ClientIP(r), map[string]string{"name": payload.Name}); err != nil {
		slog.Warn("audit department.create failed", "err", err)
	}
	api.Created(w, dept, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	departments, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", requestID)
		return
	}
	api.Success(w, departments, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestID) {
		return
	}

	dept, err := h.Service.UpdateDepartment(r.Context(), departmentID, payload.Name)
	if errors.Is(err, core.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", requestID)
		return
	}
	if errors.Is(err, core.ErrNameTaken) {
		api.Fail(w, http.StatusBadRequest, "name_taken", "department name is already in use", requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_update_failed", "failed to update department", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "department.update", "department", dept.ID, requestID, shared.ClientIP(r), map[string]string{"name": payload.Name}); err != nil {
		slog.Warn("audit department.update failed", "err", err)
	}
	api.Success(w, dept, requestID)
}

// Deleting a department re-verifies the caller's password; an authenticated
// session alone is not enough for this destructive action.
func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	err := h.Service.DeleteDepartment(r.Context(), departmentID, actor.UserID, payload.Password)
	switch {
	case errors.Is(err, core.ErrInvalidPassword):
		api.Fail(w, http.StatusForbidden, "invalid_password", "password verification failed", requestID)
		return
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", requestID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", requestID)
		return
	}

	if err := h.Audit.Record(r.Context(), actor.UserID, "department.delete", "department", departmentID, requestID, shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit department.delete failed", "err", err)
	}
	api.Success(w, map[string]string{"id": departmentID}, requestID)
}
