package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwilkins507/my-portfolio/internal/adapters/http/dto"
	"github.com/cwilkins507/my-portfolio/internal/adapters/http/middleware"
	"github.com/cwilkins507/my-portfolio/internal/app"
	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// QuizService is the part of app.QuizService the handlers use.
type QuizService interface {
	View(ctx context.Context, sessionID string) (app.QuizView, error)
	Select(ctx context.Context, sessionID, option string) (app.QuizView, error)
	Back(ctx context.Context, sessionID string) (app.QuizView, error)
	Submit(ctx context.Context, sessionID string, details domain.ContactDetails) (app.QuizView, error)
	Reset(ctx context.Context, sessionID string) (app.QuizView, error)
}

// QuizHandler serves the caller's quiz funnel. The session comes from the
// middleware.Session cookie.
type QuizHandler struct {
	service QuizService
}

// NewQuizHandler creates the handler.
func NewQuizHandler(service QuizService) *QuizHandler {
	return &QuizHandler{service: service}
}

// View handles GET /api/v1/quiz.
func (h *QuizHandler) View(c *gin.Context) {
	h.respond(c)(h.service.View(c.Request.Context(), middleware.GetSessionID(c)))
}

// Select handles POST /api/v1/quiz/answers.
func (h *QuizHandler) Select(c *gin.Context) {
	var req dto.SelectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	h.respond(c)(h.service.Select(c.Request.Context(), middleware.GetSessionID(c), req.Option))
}

// Back handles POST /api/v1/quiz/back.
func (h *QuizHandler) Back(c *gin.Context) {
	h.respond(c)(h.service.Back(c.Request.Context(), middleware.GetSessionID(c)))
}

// Submit handles POST /api/v1/quiz/submit. A relay failure answers 503 with
// the error view, whose answers are kept for a retry.
func (h *QuizHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	view, err := h.service.Submit(c.Request.Context(), middleware.GetSessionID(c), req.ToDetails())
	if step, ok := app.FailedStep(err); ok && step != app.StepValidate {
		dto.HandleErrorWithBody(c, err, dto.NewQuizResponse(view))
		return
	}

	h.respond(c)(view, err)
}

// Reset handles POST /api/v1/quiz/reset.
func (h *QuizHandler) Reset(c *gin.Context) {
	h.respond(c)(h.service.Reset(c.Request.Context(), middleware.GetSessionID(c)))
}

func (h *QuizHandler) respond(c *gin.Context) func(app.QuizView, error) {
	return func(view app.QuizView, err error) {
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		c.JSON(http.StatusOK, dto.NewQuizResponse(view))
	}
}

// RegisterRoutes registers the quiz routes on rg.
func (h *QuizHandler) RegisterRoutes(rg *gin.RouterGroup) {
	quiz := rg.Group("/quiz")
	quiz.GET("", h.View)
	quiz.POST("/answers", h.Select)
	quiz.POST("/back", h.Back)
	quiz.POST("/submit", h.Submit)
	quiz.POST("/reset", h.Reset)
}
