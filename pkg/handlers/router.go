package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"folio/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "folio"

// NewEngine wires the routes, sessions, templates and middleware.
func NewEngine(h *Handler, sessionSecret string) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	r := gin.New()
	r.Use(RequestLogger(), gin.CustomRecovery(h.recover))

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 365 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/", h.Home)
	r.GET("/media/*filepath", h.ServeMedia)
	r.POST("/settings/theme", h.SetTheme)

	api := r.Group("/api")
	{
		api.GET("/config", h.GetConfig)
		api.GET("/content/:type", h.ListContent)
		api.GET("/content/:type/:id", h.GetContent)
	}

	r.GET("/:section", h.Section)
	r.GET("/:section/:id", h.Detail)
	r.NoRoute(h.NoRoute)
	return r, nil
}

func (h *Handler) recover(c *gin.Context, rec any) {
	zap.L().Error("request panicked", zap.String("path", c.Request.URL.Path), zap.Any("panic", rec))
	h.errorPage(c, http.StatusInternalServerError, errors.New("an unexpected error occurred"))
	c.Abort()
}

// RequestLogger logs one line per request through the global zap logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= http.StatusInternalServerError:
			zap.L().Warn("request", fields...)
		default:
			zap.L().Info("request", fields...)
		}
	}
}
