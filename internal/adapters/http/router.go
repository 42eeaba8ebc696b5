package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cwilkins507/my-portfolio/internal/adapters/http/handlers"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/middleware"
	"github.com/cwilkins507/my-portfolio/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api/v1 requests when RouterConfig.Timeout is
// zero.
const DefaultRequestTimeout = 20 * time.Second

// RouterConfig holds what SetupRouter wires. Nil handlers are skipped.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string
	Timeout     time.Duration
	Session     middleware.SessionConfig

	Health   *handlers.HealthHandler
	Articles *handlers.ArticleHandler
	Quiz     *handlers.QuizHandler
	Contact  *handlers.ContactHandler
}

// SetupRouter registers middleware and routes on engine. Middleware order:
//  1. Recovery
//  2. Context logger, request ID, correlation ID
//  3. OpenTelemetry span, then metrics and trace ID
//  4. Request logging (probes skipped)
//
// /-/ carries the probes; /api/v1 carries the API under a request timeout,
// and /api/v1/quiz additionally gets the session cookie.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger),
	)

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutesOnEngine(engine)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.Timeout(timeout))

	if cfg.Articles != nil {
		cfg.Articles.RegisterRoutes(api)
	}

	if cfg.Contact != nil {
		cfg.Contact.RegisterRoutes(api)
	}

	if cfg.Quiz != nil {
		quiz := api.Group("")
		quiz.Use(middleware.Session(cfg.Session))
		cfg.Quiz.RegisterRoutes(quiz)
	}
}
