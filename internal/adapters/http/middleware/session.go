package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
)

// ContextKeySessionID is the gin context key of the quiz session id.
const ContextKeySessionID = "session_id"

// SessionConfig configures the quiz session cookie.
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Session identifies the visitor's quiz funnel by cookie. A missing or
// malformed cookie gets a fresh UUID. The cookie is refreshed on every
// request so an active visitor keeps their session.
func Session(cfg SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.MaxAge.Seconds())

	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, maxAge, "/", "", cfg.Secure, true)

		c.Set(ContextKeySessionID, id)

		ctx := ContextWithSessionID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(logging.WithSessionID(ctx, id))

		c.Next()
	}
}

// GetSessionID returns the session id set by Session.
func GetSessionID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeySessionID)
}
