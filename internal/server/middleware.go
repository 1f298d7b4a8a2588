package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const SessionCookie = "panel_session"

func applyMiddleware(r *gin.Engine, config *config.Config, otelComponent string, deps Dependencies) {
	r.Use(gin.Recovery())

	r.TrustedPlatform = "X-Real-IP"

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowWildcard = true
	if len(config.HTTP.CORSHosts) == 0 {
		corsConfig.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsConfig.AllowCredentials = false
	}
	corsConfig.AllowOrigins = config.HTTP.CORSHosts
	r.Use(cors.New(corsConfig))

	err := r.SetTrustedProxies(config.HTTP.TrustedProxies)
	if err != nil {
		slog.Error("Failed to set trusted proxies", "error", err.Error())
	}

	r.Use(valueMiddleware("config", config))
	r.Use(valueMiddleware("panel", deps.Panel))
	r.Use(valueMiddleware("library", deps.Library))
	r.Use(valueMiddleware("db", deps.DB))

	if config.HTTP.Tracing.Enabled {
		r.Use(otelgin.Middleware(otelComponent))
		r.Use(tracingProvider(config))
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.SlogLevel()}))
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		WithSpanID:        config.HTTP.Tracing.Enabled,
		WithTraceID:       config.HTTP.Tracing.Enabled,
		DefaultLevel:      slog.LevelInfo,
		ClientErrorLevel:  slog.LevelWarn,
		ServerErrorLevel:  slog.LevelError,
		WithRequestHeader: false,
	}))
}

func valueMiddleware(key string, value any) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(key, value)
		c.Next()
	}
}

func tracingProvider(config *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.HTTP.Tracing.OTLPEndpoint != "" {
			ctx := c.Request.Context()
			span := trace.SpanFromContext(ctx)
			if span.IsRecording() {
				span.SetAttributes(
					attribute.String("http.method", c.Request.Method),
					attribute.String("http.path", c.Request.URL.Path),
				)
			}
		}
		c.Next()
	}
}

// sessionMiddleware gives every browser a stable session ID carried in a
// signed cookie. A missing or forged cookie starts a fresh session.
func sessionMiddleware(config *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			sessionID, err := utils.VerifySessionJWT(config.Session.Secret, cookie)
			if err == nil {
				c.Set("session_id", sessionID)
				c.Next()
				return
			}
			slog.Debug("Discarding invalid session cookie", "error", err)
		}

		sessionID := uuid.NewString()
		token, err := utils.GenerateSessionJWT(config.Session.Secret, sessionID)
		if err != nil {
			slog.Error("Failed to sign session cookie", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, 0, "/", "", c.Request.TLS != nil, true)
		c.Set("session_id", sessionID)
		c.Next()
	}
}

// requireAuthenticated rejects sessions that have not passed the passcode gate.
func requireAuthenticated(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticated, err := deps.Panel.Gate.IsAuthenticated(c.Request.Context(), c.GetString("session_id"))
		if err != nil {
			slog.Error("Failed to check session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
			return
		}
		if !authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
