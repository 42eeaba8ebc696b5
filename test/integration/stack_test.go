//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cwilkins507/my-portfolio/articles"
	"github.com/cwilkins507/my-portfolio/internal/adapters/clients"
	"github.com/cwilkins507/my-portfolio/internal/adapters/clients/acl"
	httpAdapter "github.com/cwilkins507/my-portfolio/internal/adapters/http"
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

// relayStub stands in for the form relay and records what it was sent.
type relayStub struct {
	server  *httptest.Server
	failing atomic.Bool

	mu    sync.Mutex
	leads []map[string]string
}

func newRelayStub() *relayStub {
	r := &relayStub{}
	r.server = httptest.NewServer(http.HandlerFunc(r.handle))

	return r
}

func (r *relayStub) handle(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.failing.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"relay down"}`))

		return
	}

	var payload map[string]string
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"bad json"}`))

		return
	}

	r.mu.Lock()
	r.leads = append(r.leads, payload)
	r.mu.Unlock()

	_, _ = w.Write([]byte(`{"success":true,"message":"Email sent successfully!"}`))
}

func (r *relayStub) received() []map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]map[string]string(nil), r.leads...)
}

// stack is the whole service over embedded articles, an in-memory quiz store
// and a stub relay, served on a loopback listener.
type stack struct {
	server *httptest.Server
	relay  *relayStub
	store  *storage.Memory
}

func newStack(ctx context.Context) (*stack, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relay := newRelayStub()

	client, err := clients.New(clients.Config{
		BaseURL:     relay.server.URL,
		ServiceName: "form-relay",
		Timeout:     2 * time.Second,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Circuit:     config.CircuitBreakerConfig{MaxFailures: 50, Timeout: time.Second, HalfOpenLimit: 1},
		Logger:      logger,
	})
	if err != nil {
		relay.server.Close()
		return nil, fmt.Errorf("creating relay client: %w", err)
	}

	relayClient := acl.NewRelayClient(client, acl.RelayConfig{AccessKey: "integration-key"})

	table := domain.DefaultCategoryTable()

	catalog, err := content.NewLoader(articles.FS, content.WithCategoryTable(table), content.WithLogger(logger)).Load(ctx)
	if err != nil {
		relay.server.Close()
		return nil, fmt.Errorf("loading articles: %w", err)
	}

	store := storage.NewMemory()
	m := metrics.New()
	exec := app.NewExecutor(logger)

	registry := ports.NewHealthRegistry()
	if err := registry.Register(store); err != nil {
		relay.server.Close()
		return nil, err
	}

	if err := registry.Register(relayClient); err != nil {
		relay.server.Close()
		return nil, err
	}

	engine := gin.New()
	httpAdapter.SetupRouter(engine, httpAdapter.RouterConfig{
		Logger:      logger,
		ServiceName: "portfolio-integration",
		Session:     middleware.SessionConfig{CookieName: "quiz_session", MaxAge: time.Hour},
		Health:      handlers.NewHealthHandler(registry, handlers.NewBuildInfo("integration", "none", "now"), m.Handler()),
		Articles: handlers.NewArticleHandler(app.NewArticleService(
			catalog,
			content.NewRenderer(content.RenderOptions{ImageBase: "/images/articles"}),
			m,
			logger,
		)),
		Quiz:    handlers.NewQuizHandler(app.NewQuizService(store, relayClient, exec, logger, app.WithQuizMetrics(m))),
		Contact: handlers.NewContactHandler(app.NewContactService(relayClient, exec, m)),
	})

	return &stack{server: httptest.NewServer(engine), relay: relay, store: store}, nil
}

func (s *stack) close() {
	s.server.Close()
	s.relay.server.Close()
}

// visitor is one browser: its own cookie jar, so its own quiz session.
type visitor struct {
	baseURL string
	client  *http.Client
}

func (s *stack) newVisitor() (*visitor, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &visitor{
		baseURL: s.server.URL,
		client:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}, nil
}

// do sends a request and returns the status and body.
func (v *visitor) do(ctx context.Context, method, path, body string) (int, []byte, error) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, v.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, data, nil
}

// completeQuiz answers every question with its first option.
func (v *visitor) completeQuiz(ctx context.Context) error {
	for _, q := range domain.DefaultQuestions() {
		body, err := json.Marshal(map[string]string{"option": q.Options[0]})
		if err != nil {
			return err
		}

		status, resp, err := v.do(ctx, http.MethodPost, "/api/v1/quiz/answers", string(body))
		if err != nil {
			return err
		}

		if status != http.StatusOK {
			return fmt.Errorf("answering question %d: status %d: %s", q.Number, status, resp)
		}
	}

	return nil
}
