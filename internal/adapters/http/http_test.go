package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwilkins507/my-portfolio/internal/adapters/clients"
	"github.com/cwilkins507/my-portfolio/internal/adapters/clients/acl"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/dto"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/handlers"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/middleware"
	"github.com/cwilkins507/my-portfolio/internal/adapters/storage"
	"github.com/cwilkins507/my-portfolio/internal/app"
	"github.com/cwilkins507/my-portfolio/internal/content"
	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/config"
	"github.com/cwilkins507/my-portfolio/internal/platform/metrics"
	"github.com/cwilkins507/my-portfolio/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI is the full router over in-memory state and an httptest relay.
type testAPI struct {
	engine    *gin.Engine
	store     *storage.Memory
	relayDown atomic.Bool
	relayed   atomic.Int32
	cookie    *http.Cookie
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	api := &testAPI{store: storage.NewMemory()}

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if api.relayDown.Load() {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"success":false,"message":"upstream"}`))

			return
		}

		api.relayed.Add(1)
		_, _ = w.Write([]byte(`{"success":true,"message":"Email sent"}`))
	}))
	t.Cleanup(relay.Close)

	client, err := clients.New(clients.Config{
		BaseURL:     relay.URL,
		ServiceName: "form-relay",
		Timeout:     time.Second,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 10, Timeout: time.Minute, HalfOpenLimit: 1},
		Logger:      discardLogger(),
	})
	require.NoError(t, err)

	relayClient := acl.NewRelayClient(client, acl.RelayConfig{AccessKey: "key"})

	table := domain.DefaultCategoryTable()
	articles := []domain.Article{
		{Slug: "agents", Title: "Agents", Date: "2025-06-01", Tags: []string{"AI"}, Content: "# Agents"},
		{Slug: "terraform", Title: "Terraform", Date: "2025-05-01", Tags: []string{"Terraform"}, Content: "body"},
		{Slug: "patterns", Title: "Patterns", Date: "2025-04-01", Tags: []string{"System Design"}, Content: "body"},
	}
	for i := range articles {
		articles[i].Category = table.Classify(articles[i].Tags)
	}

	m := metrics.New()
	exec := app.NewExecutor(discardLogger())

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(api.store))
	require.NoError(t, registry.Register(relayClient))

	api.engine = gin.New()
	SetupRouter(api.engine, RouterConfig{
		Logger:      discardLogger(),
		ServiceName: "portfolio-test",
		Timeout:     5 * time.Second,
		Session:     middleware.SessionConfig{CookieName: "quiz_session", MaxAge: time.Hour},
		Health:      handlers.NewHealthHandler(registry, handlers.NewBuildInfo("1.0.0", "abc", "now"), m.Handler()),
		Articles: handlers.NewArticleHandler(app.NewArticleService(
			content.NewCatalog(articles, table),
			content.NewRenderer(content.RenderOptions{}),
			m,
			discardLogger(),
		)),
		Quiz:    handlers.NewQuizHandler(app.NewQuizService(api.store, relayClient, exec, discardLogger(), app.WithQuizMetrics(m))),
		Contact: handlers.NewContactHandler(app.NewContactService(relayClient, exec, m)),
	})

	return api
}

// do sends a request, carrying the quiz cookie once one was issued.
func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "quiz_session" {
			a.cookie = c
		}
	}

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func TestAPI_QuizFunnel(t *testing.T) {
	api := newTestAPI(t)
	questions := domain.DefaultQuestions()

	w := api.do(t, http.MethodGet, "/api/v1/quiz", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, api.cookie)

	view := decode[dto.QuizResponse](t, w)
	assert.Equal(t, "question", view.Phase)
	assert.Equal(t, 1, view.Step)
	assert.Equal(t, len(questions), view.TotalSteps)

	for i, q := range questions {
		w = api.do(t, http.MethodPost, "/api/v1/quiz/answers", `{"option":`+mustJSON(t, q.Options[0])+`}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		view = decode[dto.QuizResponse](t, w)
		assert.Equal(t, i+2, view.Step)
	}

	assert.Equal(t, "contact", view.Phase)
	assert.Nil(t, view.Question)

	api.relayDown.Store(true)

	submit := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`

	w = api.do(t, http.MethodPost, "/api/v1/quiz/submit", submit)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	view = decode[dto.QuizResponse](t, w)
	assert.Equal(t, "error", view.Phase)
	assert.Equal(t, domain.GenericSubmitError, view.Error)
	assert.Len(t, view.Answers, len(questions))

	api.relayDown.Store(false)

	w = api.do(t, http.MethodPost, "/api/v1/quiz/submit", submit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view = decode[dto.QuizResponse](t, w)
	assert.Equal(t, "success", view.Phase)
	assert.Equal(t, int32(1), api.relayed.Load())
	assert.Zero(t, api.store.Len())

	w = api.do(t, http.MethodPost, "/api/v1/quiz/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.QuizResponse](t, w).Step)
}

func TestAPI_QuizErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed body", http.MethodPost, "/api/v1/quiz/answers", `{"option":`, http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{"missing option", http.MethodPost, "/api/v1/quiz/answers", `{}`, http.StatusBadRequest, dto.ErrorCodeValidation},
		{"unknown option", http.MethodPost, "/api/v1/quiz/answers", `{"option":"Maybe"}`, http.StatusBadRequest, dto.ErrorCodeValidation},
		{"submit before contact", http.MethodPost, "/api/v1/quiz/submit", `{"first_name":"A","last_name":"B","email":"a@b.co"}`, http.StatusConflict, dto.ErrorCodeConflict},
		{"invalid contact", http.MethodPost, "/api/v1/quiz/submit", `{"first_name":"","last_name":"B","email":"nope"}`, http.StatusBadRequest, dto.ErrorCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[dto.ErrorResponse](t, w).Error.Code)
		})
	}
}

func TestAPI_QuizBack(t *testing.T) {
	api := newTestAPI(t)
	first := domain.DefaultQuestions()[0].Options[1]

	api.do(t, http.MethodPost, "/api/v1/quiz/answers", `{"option":`+mustJSON(t, first)+`}`)

	w := api.do(t, http.MethodPost, "/api/v1/quiz/back", "")
	require.Equal(t, http.StatusOK, w.Code)

	view := decode[dto.QuizResponse](t, w)
	assert.Equal(t, 1, view.Step)
	assert.Equal(t, first, view.Answers["1"])
}

func TestAPI_Articles(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/articles", "")
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[dto.ArticleListResponse](t, w)
	require.NotNil(t, list.Featured)
	assert.Equal(t, "agents", list.Featured.Slug)
	assert.Equal(t, 2, list.Total)

	w = api.do(t, http.MethodGet, "/api/v1/articles?tag=terraform", "")
	list = decode[dto.ArticleListResponse](t, w)
	assert.Nil(t, list.Featured)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Cloud & DevOps", list.Items[0].Category)

	w = api.do(t, http.MethodGet, "/api/v1/articles/agents", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[dto.ArticleDetail](t, w).HTML, `<h1 id="agents">Agents</h1>`)

	w = api.do(t, http.MethodGet, "/api/v1/articles/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeNotFound, decode[dto.ErrorResponse](t, w).Error.Code)

	w = api.do(t, http.MethodGet, "/api/v1/articles?category=Cooking", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown category", decode[dto.ErrorResponse](t, w).Error.Details["category"])

	w = api.do(t, http.MethodGet, "/api/v1/categories", "")
	assert.Equal(t, "All", decode[dto.NamesResponse](t, w).Items[0])

	w = api.do(t, http.MethodGet, "/api/v1/tags", "")
	assert.Equal(t, []string{"AI", "Terraform", "System Design"}, decode[dto.NamesResponse](t, w).Items)
}

func TestAPI_Contact(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/contact", `{"name":"Ada","email":"ada@example.com","service":"ai-automation"}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, int32(1), api.relayed.Load())
	assert.Nil(t, api.cookie, "contact does not start a quiz session")

	w = api.do(t, http.MethodPost, "/api/v1/contact", `{"name":"Ada","email":"not-an-email","service":"knitting"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	details := decode[dto.ErrorResponse](t, w).Error.Details
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "service")

	api.relayDown.Store(true)

	w = api.do(t, http.MethodPost, "/api/v1/contact", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, domain.GenericSubmitError, decode[dto.ErrorResponse](t, w).Error.Message)
}

func TestAPI_Probes(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/-/live", "").Code)

	w := api.do(t, http.MethodGet, "/-/ready", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "quiz-store")
	assert.Contains(t, w.Body.String(), "form-relay")

	assert.Equal(t, "1.0.0", decode[handlers.BuildInfo](t, api.do(t, http.MethodGet, "/-/build", "")).Version)

	api.do(t, http.MethodPost, "/api/v1/quiz/back", "")

	w = api.do(t, http.MethodGet, "/-/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolio_quiz_transitions_total")
}

func TestAPI_RequestIDEchoed(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-7")

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, "req-7", w.Header().Get(middleware.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)

	return string(b)
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: 16,
	}
}

func TestServer_Addr(t *testing.T) {
	cfg := testServerConfig()
	cfg.Host = "localhost"
	cfg.Port = 8080

	srv := New(cfg, discardLogger())

	assert.Equal(t, "localhost:8080", srv.Addr())
	assert.Equal(t, cfg, srv.Config())
}

func TestServer_StartShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	errCh := srv.Start()

	time.Sleep(50 * time.Millisecond)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, open := <-errCh
	assert.False(t, open)
}

func TestServer_MaxBodySize(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	srv.Engine().POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"under the limit", "small", http.StatusOK},
		{"over the limit", strings.Repeat("x", 64), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(tt.body)))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
