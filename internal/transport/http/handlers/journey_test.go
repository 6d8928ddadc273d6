package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"hrms/internal/app/server"
	"hrms/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:       dbURL,
		JWTSecret:         "test-secret",
		FrontendDir:       "frontend/dist",
		Environment:       "test",
		CORSOrigins:       []string{"http://localhost:5173"},
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		SeedDepartment:    "Test HR",
		MigrationsDir:     "../../../../migrations",
		RunMigrations:     true,
		RunSeed:           true,
		MaxBodyBytes:      1048576,
		TokenTTL:          time.Hour,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	// Seeded admin and departments survive; everything transactional from
	// previous runs goes so fixed periods and cycles start clean.
	_, err = app.DB.Exec(context.Background(), `
    TRUNCATE attendance, leave_requests, payroll, appraisals,
             performance_cycles, notifications, audit_events, employees
  `)
	if err != nil {
		t.Fatalf("reset test database: %v", err)
	}

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func call(t *testing.T, client *http.Client, method, url, token string, payload any) (int, envelope) {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response for %s %s: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func login(t *testing.T, client *http.Client, baseURL, email, password, portal string) string {
	t.Helper()
	status, env := call(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password, "portal": portal,
	})
	if status != http.StatusOK {
		t.Fatalf("login failed with status %d: %+v", status, env.Error)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	return data.AccessToken
}

func TestEmployeeLifecycleJourney(t *testing.T) {
	app, ts, cfg := startApp(t)
	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "admin")

	suffix := time.Now().UnixNano()

	// Department and employee setup.
	status, env := call(t, client, http.MethodPost, ts.URL+"/api/v1/department", adminToken, map[string]string{
		"name": fmt.Sprintf("Engineering-%d", suffix),
	})
	if status != http.StatusCreated {
		t.Fatalf("create department: status %d, %+v", status, env.Error)
	}
	var dept struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &dept); err != nil {
		t.Fatalf("decode department: %v", err)
	}

	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/employee", adminToken, map[string]any{
		"firstName":    "Asha",
		"lastName":     "Iyer",
		"email":        fmt.Sprintf("asha-%d@example.com", suffix),
		"designation":  "Engineer",
		"joiningDate":  "2024-01-15",
		"baseSalary":   1200000,
		"departmentId": dept.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create employee: status %d, %+v", status, env.Error)
	}
	var emp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &emp); err != nil {
		t.Fatalf("decode employee: %v", err)
	}

	empEmail := fmt.Sprintf("asha-login-%d@example.com", suffix)
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/auth/create-user", adminToken, map[string]string{
		"employeeId": emp.ID,
		"email":      empEmail,
		"password":   "Secret123!",
	})
	if status != http.StatusCreated {
		t.Fatalf("create user: status %d, %+v", status, env.Error)
	}

	empToken := login(t, client, ts.URL, empEmail, "Secret123!", "employee")

	// Attendance day cycle.
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/clock-in", empToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("clock in: status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/clock-in", empToken, nil)
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "already_clocked_in" {
		t.Fatalf("expected already_clocked_in, got status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/attendance/clock-out", empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("clock out: status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodGet, ts.URL+"/api/v1/attendance/status", empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("attendance status: status %d, %+v", status, env.Error)
	}
	var today struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &today); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if today.Status != "COMPLETED" {
		t.Fatalf("expected COMPLETED day status, got %s", today.Status)
	}

	// Leave application and approval.
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/leaves/apply", empToken, map[string]string{
		"type":      "CASUAL",
		"startDate": "2030-03-04",
		"endDate":   "2030-03-06",
		"reason":    "family event",
	})
	if status != http.StatusCreated {
		t.Fatalf("apply leave: status %d, %+v", status, env.Error)
	}
	var leaveReq struct {
		ID        string `json:"id"`
		DaysCount int    `json:"daysCount"`
	}
	if err := json.Unmarshal(env.Data, &leaveReq); err != nil {
		t.Fatalf("decode leave request: %v", err)
	}
	if leaveReq.DaysCount != 3 {
		t.Fatalf("expected 3 leave days, got %d", leaveReq.DaysCount)
	}

	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/leaves/action/"+leaveReq.ID, adminToken, map[string]string{
		"decision": "APPROVED",
		"comment":  "enjoy",
	})
	if status != http.StatusOK {
		t.Fatalf("approve leave: status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/leaves/action/"+leaveReq.ID, adminToken, map[string]string{
		"decision": "REJECTED",
	})
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "already_processed" {
		t.Fatalf("expected already_processed, got status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodGet, ts.URL+"/api/v1/leaves/balance", empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("leave balance: status %d, %+v", status, env.Error)
	}
	var balances struct {
		Casual int `json:"casual"`
	}
	if err := json.Unmarshal(env.Data, &balances); err != nil {
		t.Fatalf("decode balances: %v", err)
	}
	if balances.Casual != 9 {
		t.Fatalf("expected casual balance 9 after approval, got %d", balances.Casual)
	}

	// Payroll batch.
	period := map[string]any{"month": "March", "year": 2030}
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/generate", adminToken, period)
	if status != http.StatusCreated {
		t.Fatalf("generate payroll: status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/generate", adminToken, period)
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "already_generated" {
		t.Fatalf("expected already_generated, got status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodGet, ts.URL+"/api/v1/payroll/my-history", empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("payroll history: status %d, %+v", status, env.Error)
	}
	var slips []struct {
		ID     string `json:"id"`
		NetPay int64  `json:"netPay"`
	}
	if err := json.Unmarshal(env.Data, &slips); err != nil {
		t.Fatalf("decode payroll history: %v", err)
	}
	if len(slips) == 0 {
		t.Fatal("expected a payroll row for the employee")
	}
	if slips[0].NetPay != 83800 {
		t.Fatalf("expected net pay 83800 for annual 1200000, got %d", slips[0].NetPay)
	}

	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/pay/"+slips[0].ID, adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("mark paid: status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/payroll/pay/"+slips[0].ID, adminToken, nil)
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "already_paid" {
		t.Fatalf("expected already_paid, got status %d, %+v", status, env.Error)
	}

	// Appraisal cycle through hike acceptance.
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/performance/cycle", adminToken, map[string]string{
		"title":     fmt.Sprintf("FY30-%d", suffix),
		"startDate": "2030-04-01",
		"endDate":   "2031-03-31",
	})
	if status != http.StatusCreated {
		t.Fatalf("create cycle: status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodGet, ts.URL+"/api/v1/performance/my-review", empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("my review: status %d, %+v", status, env.Error)
	}
	var myReview struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &myReview); err != nil {
		t.Fatalf("decode my review: %v", err)
	}
	if myReview.Status != "PENDING_SELF" {
		t.Fatalf("expected PENDING_SELF, got %s", myReview.Status)
	}

	// Manager review before the self review must be rejected.
	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/manager-review/"+myReview.ID, adminToken, map[string]any{
		"managerReview": "too early", "rating": 4,
	})
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "invalid_stage" {
		t.Fatalf("expected invalid_stage, got status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/self-review/"+myReview.ID, empToken, map[string]string{
		"selfReview": "shipped the reporting stack",
	})
	if status != http.StatusOK {
		t.Fatalf("self review: status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/manager-review/"+myReview.ID, adminToken, map[string]any{
		"managerReview": "solid year", "rating": 5,
	})
	if status != http.StatusOK {
		t.Fatalf("manager review: status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/accept-hike/"+myReview.ID, empToken, nil)
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "no_proposal" {
		t.Fatalf("expected no_proposal before proposing, got status %d, %+v", status, env.Error)
	}

	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/propose-hike/"+myReview.ID, adminToken, map[string]any{
		"percentage": 10,
	})
	if status != http.StatusOK {
		t.Fatalf("propose hike: status %d, %+v", status, env.Error)
	}
	var proposed struct {
		ProposedSalary int64 `json:"proposedSalary"`
	}
	if err := json.Unmarshal(env.Data, &proposed); err != nil {
		t.Fatalf("decode proposal: %v", err)
	}
	if proposed.ProposedSalary != 1320000 {
		t.Fatalf("expected proposed salary 1320000, got %d", proposed.ProposedSalary)
	}

	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/accept-hike/"+myReview.ID, empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("accept hike: status %d, %+v", status, env.Error)
	}

	var newSalary int64
	if err := app.DB.QueryRow(context.Background(),
		"SELECT base_salary FROM employees WHERE id = $1", emp.ID).Scan(&newSalary); err != nil {
		t.Fatalf("load salary: %v", err)
	}
	if newSalary != 1320000 {
		t.Fatalf("expected base salary 1320000 after acceptance, got %d", newSalary)
	}

	// Notifications accumulated along the way: the payroll broadcast and the
	// hike acceptance both land in the employee's inbox.
	status, env = call(t, client, http.MethodGet, ts.URL+"/api/v1/notifications", empToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list notifications: status %d, %+v", status, env.Error)
	}
	var notes []struct {
		Type  string `json:"type"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(env.Data, &notes); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	var sawPayslip, sawAcceptance bool
	for _, n := range notes {
		if n.Type == "payroll" {
			sawPayslip = true
		}
		if n.Title == "Salary revision applied" {
			sawAcceptance = true
		}
	}
	if !sawPayslip {
		t.Fatal("expected a payroll notification after generation")
	}
	if !sawAcceptance {
		t.Fatal("expected a notification after accepting the hike")
	}

	// Re-proposing after acceptance clears the acceptance flag and computes
	// from the raised base.
	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/propose-hike/"+myReview.ID, adminToken, map[string]any{
		"percentage": 5,
	})
	if status != http.StatusOK {
		t.Fatalf("re-propose hike: status %d, %+v", status, env.Error)
	}
	var reproposed struct {
		ProposedSalary int64 `json:"proposedSalary"`
		IsAccepted     bool  `json:"isAccepted"`
	}
	if err := json.Unmarshal(env.Data, &reproposed); err != nil {
		t.Fatalf("decode re-proposal: %v", err)
	}
	if reproposed.IsAccepted {
		t.Fatal("expected acceptance flag cleared by the new proposal")
	}
	if reproposed.ProposedSalary != 1386000 {
		t.Fatalf("expected proposed salary 1386000 from the raised base, got %d", reproposed.ProposedSalary)
	}

	// A different employee cannot accept it.
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/employee", adminToken, map[string]any{
		"firstName":   "Dev",
		"lastName":    "Menon",
		"email":       fmt.Sprintf("dev-%d@example.com", suffix),
		"designation": "Engineer",
		"joiningDate": "2024-02-01",
		"baseSalary":  900000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create second employee: status %d, %+v", status, env.Error)
	}
	var other struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &other); err != nil {
		t.Fatalf("decode second employee: %v", err)
	}
	otherEmail := fmt.Sprintf("dev-login-%d@example.com", suffix)
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/auth/create-user", adminToken, map[string]string{
		"employeeId": other.ID, "email": otherEmail, "password": "Secret123!",
	})
	if status != http.StatusCreated {
		t.Fatalf("create second user: status %d, %+v", status, env.Error)
	}
	otherToken := login(t, client, ts.URL, otherEmail, "Secret123!", "employee")

	status, env = call(t, client, http.MethodPatch, ts.URL+"/api/v1/performance/accept-hike/"+myReview.ID, otherToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 accepting another employee's hike, got %d, %+v", status, env.Error)
	}

	// Duplicate names and emails surface as conflicts, not server errors.
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/department", adminToken, map[string]string{
		"name": fmt.Sprintf("Operations-%d", suffix),
	})
	if status != http.StatusCreated {
		t.Fatalf("create second department: status %d, %+v", status, env.Error)
	}
	var ops struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &ops); err != nil {
		t.Fatalf("decode second department: %v", err)
	}
	status, env = call(t, client, http.MethodPut, ts.URL+"/api/v1/department/"+ops.ID, adminToken, map[string]string{
		"name": fmt.Sprintf("Engineering-%d", suffix),
	})
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "name_taken" {
		t.Fatalf("expected name_taken, got status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodPut, ts.URL+"/api/v1/employee/"+other.ID, adminToken, map[string]any{
		"firstName":   "Dev",
		"lastName":    "Menon",
		"email":       fmt.Sprintf("asha-%d@example.com", suffix),
		"designation": "Engineer",
		"joiningDate": "2024-02-01",
		"baseSalary":  900000,
	})
	if status != http.StatusBadRequest || env.Error == nil || env.Error.Code != "email_taken" {
		t.Fatalf("expected email_taken, got status %d, %+v", status, env.Error)
	}

	// Deleting a department needs the admin's own password, not just a session.
	status, env = call(t, client, http.MethodDelete, ts.URL+"/api/v1/department/"+ops.ID, adminToken, map[string]string{
		"password": "not-the-password",
	})
	if status != http.StatusForbidden || env.Error == nil || env.Error.Code != "invalid_password" {
		t.Fatalf("expected invalid_password, got status %d, %+v", status, env.Error)
	}
	status, env = call(t, client, http.MethodDelete, ts.URL+"/api/v1/department/"+ops.ID, adminToken, map[string]string{
		"password": cfg.SeedAdminPassword,
	})
	if status != http.StatusOK {
		t.Fatalf("delete department: status %d, %+v", status, env.Error)
	}
}

func TestPortalGating(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()

	// Admin credentials on the employee portal must look like bad credentials.
	status, env := call(t, client, http.MethodPost, ts.URL+"/api/v1/auth/login", "", map[string]string{
		"email": cfg.SeedAdminEmail, "password": cfg.SeedAdminPassword, "portal": "employee",
	})
	if status != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "invalid_credentials" {
		t.Fatalf("expected generic invalid_credentials, got status %d, %+v", status, env.Error)
	}
}

func TestEmployeeCannotDecideLeave(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "admin")

	suffix := time.Now().UnixNano()
	status, env := call(t, client, http.MethodPost, ts.URL+"/api/v1/employee", adminToken, map[string]any{
		"firstName":   "Ravi",
		"lastName":    "Nair",
		"email":       fmt.Sprintf("ravi-%d@example.com", suffix),
		"designation": "Analyst",
		"joiningDate": "2024-06-01",
		"baseSalary":  600000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create employee: status %d, %+v", status, env.Error)
	}
	var emp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &emp); err != nil {
		t.Fatalf("decode employee: %v", err)
	}

	empEmail := fmt.Sprintf("ravi-login-%d@example.com", suffix)
	status, env = call(t, client, http.MethodPost, ts.URL+"/api/v1/auth/create-user", adminToken, map[string]string{
		"employeeId": emp.ID, "email": empEmail, "password": "Secret123!",
	})
	if status != http.StatusCreated {
		t.Fatalf("create user: status %d, %+v", status, env.Error)
	}
	empToken := login(t, client, ts.URL, empEmail, "Secret123!", "employee")

	status, env = call(t, client, http.MethodGet, ts.URL+"/api/v1/leaves/pending", empToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for employee on pending queue, got %d, %+v", status, env.Error)
	}
}
