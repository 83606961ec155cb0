package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	sessionDomain "github.com/ridloal/storefront-dashboard/internal/session/domain"
	sessionService "github.com/ridloal/storefront-dashboard/internal/session/service"
)

const (
	SessionCookie = "dashboard_sid"
	sessionKey    = "session"
)

// SessionMiddleware attaches the tab's session to the request, issuing a new
// session id when the cookie is missing or not a UUID. The cookie has no
// Max-Age, so it dies with the browser session.
func SessionMiddleware(sessions sessionService.SessionService, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || !validSessionID(sid) {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, 0, "/", "", secure, true)
		}
		c.Set(sessionKey, sessions.Open(sid))
		c.Next()
	}
}

func currentSession(c *gin.Context) *sessionService.Session {
	return c.MustGet(sessionKey).(*sessionService.Session)
}

// RequireLogin runs the session guard before any dashboard route. A missing,
// malformed or expired token sends the user to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if _, err := sess.ValidToken(c.Request.Context()); err != nil {
			if sessionDomain.IsSessionError(err) {
				if errors.Is(err, sessionDomain.ErrMalformedToken) {
					logger.Warn("Session guard: discarding malformed token", "sid", sess.ID())
					_ = sess.Clear(c.Request.Context())
				}
				c.Redirect(http.StatusSeeOther, "/login")
				c.Abort()
				return
			}
			logger.Error("Session guard: session store unavailable", err, "sid", sess.ID())
			c.String(http.StatusServiceUnavailable, "Sessão indisponível")
			c.Abort()
			return
		}
		c.Next()
	}
}

func validSessionID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}
