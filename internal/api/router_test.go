package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/api"
	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/mail"
	"github.com/notifyhub/jobboard/internal/metrics"
	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/ratelimiter"
	"github.com/notifyhub/jobboard/internal/realtime"
	"github.com/notifyhub/jobboard/internal/repository"
	"github.com/notifyhub/jobboard/internal/service"
	"github.com/notifyhub/jobboard/internal/worker"
)

const secret = "test-secret"

type recordingHandle struct {
	id     string
	mu     sync.Mutex
	events []realtime.Event
}

func (h *recordingHandle) ID() string { return h.id }

func (h *recordingHandle) Send(evt realtime.Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
	return true
}

func (h *recordingHandle) received() []realtime.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]realtime.Event(nil), h.events...)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	handler  http.Handler
	tokens   *auth.TokenManager
	registry *realtime.Registry
	conns    *realtime.ConnSet
	queue    *queue.PriorityQueue
	metrics  *metrics.Metrics
	users    *repository.MockUserRepository
}

func newTestServer(t *testing.T, limits *ratelimiter.ClientLimiters) *testServer {
	t.Helper()
	logger := zap.NewNop()

	jobs := repository.NewMockJobRepository()
	apps := repository.NewMockApplicationRepository(jobs)
	users := repository.NewMockUserRepository()
	alerts := repository.NewMockAlertRepository()
	companies := repository.NewMockCompanyRepository(users)
	saved := repository.NewMockSavedJobRepository(jobs)

	registry := realtime.NewRegistry()
	conns := realtime.NewConnSet()
	notifier := realtime.NewNotifier(registry, conns, logger, realtime.Hooks{})
	hub := realtime.NewHub(registry, conns, "*", logger, realtime.HubHooks{})

	q := queue.New()
	dispatcher := mail.NewDispatcher(q, logger)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	s := &testServer{
		tokens:   auth.NewTokenManager(secret),
		registry: registry,
		conns:    conns,
		queue:    q,
		metrics:  m,
		users:    users,
	}
	deps := api.Deps{
		Users:        service.NewUserService(users, dispatcher, logger),
		Jobs:         service.NewJobService(jobs, alerts, notifier, logger),
		Applications: service.NewApplicationService(apps, jobs, users, notifier, dispatcher, logger),
		Alerts:       service.NewAlertService(alerts, jobs, logger),
		Companies:    service.NewCompanyService(companies, jobs, logger),
		SavedJobs:    service.NewSavedJobService(saved, jobs, logger),
		Tokens:       s.tokens,
		Hub:          hub,
		Registry:     registry,
		Conns:        conns,
		Queue:        q,
		Retries:      worker.NewRetryWorker(q, []time.Duration{time.Second}, time.Second, logger),
		Metrics:      m,
		Gatherer:     reg,
		ClientURL:    "http://localhost:5173",
		Logger:       logger,
	}
	if limits != nil {
		deps.Limits = limits
	}
	s.handler = api.NewRouter(deps)
	return s
}

func (s *testServer) token(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	tok, err := s.tokens.Issue(auth.Principal{ID: id, Role: role, Name: id + " name", Email: id + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestCorrelationIDEchoed(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Correlation-ID"))
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)
	seeker := s.token(t, "S1", domain.RoleJobSeeker)
	job := domain.JobRequest{Title: "Backend Engineer", Description: "Go"}

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"wrong role", seeker, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/jobs", tt.token, job)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCookieAuth(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: s.token(t, "S1", domain.RoleJobSeeker)})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	u := decode[domain.User](t, rec)
	assert.Equal(t, "S1", u.ID)
	assert.Equal(t, "S1@example.com", u.Email)
}

func TestApplicationWorkflow(t *testing.T) {
	s := newTestServer(t, nil)
	employer := s.token(t, "E1", domain.RoleEmployer)
	rival := s.token(t, "E2", domain.RoleEmployer)
	seeker := s.token(t, "S1", domain.RoleJobSeeker)

	employerConn := &recordingHandle{id: "c-e1"}
	seekerConn := &recordingHandle{id: "c-s1"}
	s.registry.Register("E1", employerConn)
	s.registry.Register("S1", seekerConn)
	s.conns.Add(employerConn)
	s.conns.Add(seekerConn)

	rec := s.do(t, http.MethodPost, "/api/v1/jobs", employer, domain.JobRequest{Title: "Backend Engineer", Description: "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decode[domain.Job](t, rec)
	require.Len(t, seekerConn.received(), 1)
	assert.Equal(t, realtime.EventNewJobPosted, seekerConn.received()[0].Name)

	rec = s.do(t, http.MethodPost, "/api/v1/applications/"+job.ID+"/apply", seeker, domain.ApplyRequest{CoverLetter: "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	app := decode[domain.Application](t, rec)
	assert.Equal(t, domain.StatusApplied, app.Status)

	employerEvents := employerConn.received()
	require.Len(t, employerEvents, 2)
	assert.Equal(t, realtime.EventNewApplication, employerEvents[1].Name)

	rec = s.do(t, http.MethodPost, "/api/v1/applications/"+job.ID+"/apply", seeker, domain.ApplyRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrAlreadyApplied.Error())

	statusURL := "/api/v1/applications/" + app.ID + "/status"
	rec = s.do(t, http.MethodPut, statusURL, rival, domain.StatusUpdateRequest{Status: domain.StatusInterview})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPut, statusURL, seeker, domain.StatusUpdateRequest{Status: domain.StatusInterview})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPut, statusURL, employer, domain.StatusUpdateRequest{Status: "Hired"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, seekerConn.received(), 1, "rejected updates must not push")

	rec = s.do(t, http.MethodPut, statusURL, employer, domain.StatusUpdateRequest{Status: domain.StatusInterview})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Application](t, rec)
	assert.Equal(t, domain.StatusInterview, updated.Status)
	assert.Equal(t, []domain.Status{domain.StatusOffer, domain.StatusRejected}, updated.NextStatuses)

	events := seekerConn.received()
	require.Len(t, events, 2)
	assert.Equal(t, realtime.EventApplicationStatusUpdate, events[1].Name)
	assert.Equal(t, service.StatusUpdateEvent{
		JobTitle: "Backend Engineer", Status: domain.StatusInterview, ApplicationID: app.ID,
	}, events[1].Data)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/"+app.ID, seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "next_statuses")
	assert.Equal(t, domain.StatusInterview, decode[domain.Application](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/"+app.ID, employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.Status{domain.StatusOffer, domain.StatusRejected}, decode[domain.Application](t, rec).NextStatuses)

	rec = s.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/note", employer, domain.NoteRequest{Text: "good call"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, realtime.EventApplicationNoteAdded, employerConn.received()[2].Name)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/job/"+job.ID, employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[domain.Application]](t, rec)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, []domain.Status{domain.StatusOffer, domain.StatusRejected}, page.Data[0].NextStatuses)

	rec = s.do(t, http.MethodGet, "/api/v1/applications", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.Page[domain.Application]](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/api/v1/applications/stats", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.ApplicationStats](t, rec)
	require.Len(t, stats.ByStatus, 1)
	assert.Equal(t, domain.StatusInterview, stats.ByStatus[0].Status)
}

func TestJobEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	employer := s.token(t, "E1", domain.RoleEmployer)

	rec := s.do(t, http.MethodPost, "/api/v1/jobs", employer, domain.JobRequest{
		Title: "Remote Gopher", Description: "Go", Remote: true, Location: domain.Location{City: "Berlin"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decode[domain.Job](t, rec)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs?search=gopher&remote=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.Page[domain.Job]](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs?location=Paris", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[domain.Page[domain.Job]](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs/"+job.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.Job](t, rec).Views)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/jobs/"+job.ID, employer, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs/mine", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.Page[domain.Job]](t, rec).Total)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+employer)
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestAlertEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	seeker := s.token(t, "S1", domain.RoleJobSeeker)
	other := s.token(t, "S2", domain.RoleJobSeeker)

	rec := s.do(t, http.MethodPost, "/api/v1/alerts", seeker, domain.AlertRequest{Keywords: []string{"go"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	alert := decode[domain.JobAlert](t, rec)
	assert.Equal(t, domain.FrequencyWeekly, alert.Frequency)

	rec = s.do(t, http.MethodGet, "/api/v1/alerts", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.JobAlert](t, rec), 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/alerts/"+alert.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/alerts/recommended", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[domain.Page[domain.Job]](t, rec).Total)

	rec = s.do(t, http.MethodPost, "/api/v1/alerts", seeker, domain.AlertRequest{Frequency: "hourly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/alerts/"+alert.ID, seeker, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	s.registry.Register("S1", &recordingHandle{id: "c1"})

	// First sight of a user queues the welcome email.
	rec := s.do(t, http.MethodGet, "/api/v1/users/me", s.token(t, "S1", domain.RoleJobSeeker), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Queue    map[string]int `json:"mail_queue_depth"`
		Retries  int            `json:"mail_retries_pending"`
		Realtime map[string]int `json:"realtime"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Queue["high"])
	assert.Equal(t, 1, body.Queue["total"])
	assert.Equal(t, 0, body.Retries)
	assert.Equal(t, 1, body.Realtime["connected_users"])

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, ratelimiter.NewClientLimiters(2, time.Minute))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	}
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.RateLimited))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Real-IP", "203.0.113.9")
	other := httptest.NewRecorder()
	s.handler.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestHealthReportsDatabase(t *testing.T) {
	logger := zap.NewNop()
	s := newTestServer(t, nil)
	q := queue.New()
	registry := realtime.NewRegistry()
	conns := realtime.NewConnSet()
	h := api.NewRouter(api.Deps{
		Users:     service.NewUserService(repository.NewMockUserRepository(), mail.NewDispatcher(q, logger), logger),
		Tokens:    s.tokens,
		Hub:       realtime.NewHub(registry, conns, "*", logger, realtime.HubHooks{}),
		Registry:  registry,
		Conns:     conns,
		Queue:     q,
		Retries:   worker.NewRetryWorker(q, []time.Duration{time.Second}, time.Second, logger),
		DB:        failingPinger{},
		ClientURL: "*",
		Logger:    logger,
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompanyEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	employer := s.token(t, "E1", domain.RoleEmployer)
	rival := s.token(t, "E2", domain.RoleEmployer)
	seeker := s.token(t, "S1", domain.RoleJobSeeker)

	rec := s.do(t, http.MethodGet, "/api/v1/companies/me", employer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/companies", seeker, domain.CompanyRequest{CompanyName: "Sam Inc"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/companies", employer, domain.CompanyRequest{CompanyName: "Acme", CompanySize: domain.CompanySizeS})
	require.Equal(t, http.StatusCreated, rec.Code)
	company := decode[domain.CompanyProfile](t, rec)
	assert.Equal(t, "E1", company.Employer)

	rec = s.do(t, http.MethodPost, "/api/v1/companies", employer, domain.CompanyRequest{CompanyName: "Acme again"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrCompanyExists.Error())

	rec = s.do(t, http.MethodPut, "/api/v1/companies", employer, domain.CompanyRequest{CompanyName: "Acme Corp"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Corp", decode[domain.CompanyProfile](t, rec).CompanyName)

	rec = s.do(t, http.MethodPost, "/api/v1/jobs", employer, domain.JobRequest{Title: "Backend Engineer", Description: "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/companies/me", employer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[domain.CompanyDashboard](t, rec)
	assert.Equal(t, domain.CompanyStats{TotalJobs: 1, ActiveJobs: 1}, dash.Stats)

	// Public reads need no token and accept the employer id too.
	for _, path := range []string{"/api/v1/companies/" + company.ID, "/api/v1/companies/E1", "/api/v1/companies/by-employer/E1"} {
		rec = s.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		page := decode[domain.CompanyPage](t, rec)
		assert.Equal(t, company.ID, page.Profile.ID, path)
		assert.Len(t, page.Jobs, 1, path)
	}
	rec = s.do(t, http.MethodGet, "/api/v1/companies/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	reviewsURL := "/api/v1/companies/" + company.ID + "/reviews"
	rec = s.do(t, http.MethodPost, reviewsURL, "", domain.ReviewRequest{Rating: 5, Comment: "anonymous"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, reviewsURL, employer, domain.ReviewRequest{Rating: 5, Comment: "we rock"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPost, reviewsURL, seeker, domain.ReviewRequest{Rating: 6, Comment: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, reviewsURL, seeker, domain.ReviewRequest{Rating: 4, Title: "Nice", Comment: "good process"})
	require.Equal(t, http.StatusCreated, rec.Code)
	review := decode[domain.Review](t, rec)
	rec = s.do(t, http.MethodPost, reviewsURL, seeker, domain.ReviewRequest{Rating: 1, Comment: "changed my mind"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrAlreadyReviewed.Error())
	rec = s.do(t, http.MethodPost, reviewsURL, rival, domain.ReviewRequest{Rating: 2, Comment: "meh"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, reviewsURL, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode[domain.CompanyReviews](t, rec)
	assert.Len(t, reviews.Reviews, 2)
	assert.Equal(t, 3.0, reviews.Ratings)

	reviewURL := reviewsURL + "/" + review.ID
	rating := 5
	rec = s.do(t, http.MethodPut, reviewURL, rival, domain.ReviewUpdate{Rating: &rating})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPut, reviewURL, seeker, domain.ReviewUpdate{Rating: &rating})
	require.Equal(t, http.StatusOK, rec.Code)
	edited := decode[domain.Review](t, rec)
	assert.Equal(t, 5, edited.Rating)
	assert.Equal(t, "good process", edited.Comment)

	rec = s.do(t, http.MethodDelete, reviewURL, seeker, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, reviewURL, seeker, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/companies/"+company.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.CompanyPage](t, rec)
	assert.Equal(t, 1, page.Profile.ReviewCount)
	assert.Equal(t, 2.0, page.Profile.Ratings)
}

func TestSavedJobEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	employer := s.token(t, "E1", domain.RoleEmployer)
	seeker := s.token(t, "S1", domain.RoleJobSeeker)

	rec := s.do(t, http.MethodPost, "/api/v1/jobs", employer, domain.JobRequest{Title: "Backend Engineer", Description: "Go"})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decode[domain.Job](t, rec)

	saveURL := "/api/v1/jobs/" + job.ID + "/save"
	rec = s.do(t, http.MethodPost, saveURL, employer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/jobs/missing/save", seeker, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPost, saveURL, seeker, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/jobs/saved", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[*domain.Job]](t, rec)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, job.ID, page.Data[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs/saved", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, saveURL, seeker, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, saveURL, seeker, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/jobs/saved", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[domain.Page[*domain.Job]](t, rec).Total)
}

func TestAdminUserEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.token(t, "A1", domain.RoleAdmin)
	employer := s.token(t, "E1", domain.RoleEmployer)
	seeker := s.token(t, "S1", domain.RoleJobSeeker)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/users/me", employer, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/users/me", seeker, nil).Code)

	rec := s.do(t, http.MethodGet, "/api/v1/users/all", seeker, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/users/all?role=employer", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[*domain.User]](t, rec)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "E1", page.Data[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/users/all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[domain.Page[*domain.User]](t, rec).Total)

	rec = s.do(t, http.MethodGet, "/api/v1/users/all?role=recruiter", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/users/E1", seeker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "E1 name", decode[domain.User](t, rec).Name)

	rec = s.do(t, http.MethodDelete, "/api/v1/users/S1", employer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	s.users.DeleteErr = domain.ErrUserInUse
	rec = s.do(t, http.MethodDelete, "/api/v1/users/E1", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	s.users.DeleteErr = nil

	rec = s.do(t, http.MethodDelete, "/api/v1/users/S1", admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/users/S1", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/v1/users/S1", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobStats(t *testing.T) {
	s := newTestServer(t, nil)
	employer := s.token(t, "E1", domain.RoleEmployer)

	lo, hi := 50000, 70000
	reqs := []domain.JobRequest{
		{Title: "Backend", Description: "Go", Salary: domain.SalaryRange{Min: &lo}},
		{Title: "Frontend", Description: "TS", Salary: domain.SalaryRange{Min: &hi}},
		{Title: "Contractor", Description: "Ops", JobType: domain.JobTypeContract},
	}
	for _, req := range reqs {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/jobs", employer, req).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/jobs/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[[]domain.JobTypeStat](t, rec)
	byType := map[domain.JobType]domain.JobTypeStat{}
	for _, st := range stats {
		byType[st.JobType] = st
	}
	require.Len(t, byType, 2)
	assert.Equal(t, 2, byType[domain.JobTypeFullTime].Count)
	require.NotNil(t, byType[domain.JobTypeFullTime].AvgMinSalary)
	assert.Equal(t, 60000.0, *byType[domain.JobTypeFullTime].AvgMinSalary)
	assert.Equal(t, 1, byType[domain.JobTypeContract].Count)
	assert.Nil(t, byType[domain.JobTypeContract].AvgMinSalary)
}
