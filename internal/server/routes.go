package server

import (
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	controllersV1 "github.com/USA-RedDragon/arm-panel/internal/server/controllers/v1"
	websocketControllers "github.com/USA-RedDragon/arm-panel/internal/server/websocket"
	"github.com/USA-RedDragon/arm-panel/internal/websocket"
	"github.com/gin-gonic/gin"
)

func applyRoutes(r *gin.Engine, config *config.Config, deps Dependencies, eventsWebsocket *websocketControllers.EventsWebsocket) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	session := sessionMiddleware(config)
	authenticated := requireAuthenticated(deps)

	apiV1 := r.Group("/api/v1", session)
	apiV1.GET("/session", controllersV1.GETSession)
	apiV1.POST("/session", controllersV1.POSTSession)
	v1(apiV1.Group("", authenticated))

	// UI events websocket. The lock screen listens before unlocking, so it
	// only needs a session.
	wsV1 := r.Group("/ws/v1", session)
	wsV1.GET("/events", websocket.CreateHandler(eventsWebsocket, config))

	r.NoRoute(func(c *gin.Context) {
		slog.Warn("Not Found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
}

func v1(group *gin.RouterGroup) {
	group.GET("/bridge", controllersV1.GETBridge)
	group.POST("/bridge/connect", controllersV1.POSTBridgeConnect)
	group.POST("/bridge/disconnect", controllersV1.POSTBridgeDisconnect)
	group.POST("/movement", controllersV1.POSTMovement)
	group.POST("/scripts/run", controllersV1.POSTRunScript)
	group.GET("/console", controllersV1.GETConsole)
	group.DELETE("/console", controllersV1.DELETEConsole)
	group.GET("/console/archives", controllersV1.GETConsoleArchives)
	group.GET("/console/archives/:name", controllersV1.GETConsoleArchive)
	group.GET("/templates", controllersV1.GETTemplates)
	group.GET("/templates/:name", controllersV1.GETTemplate)
	group.PUT("/templates/:name", controllersV1.PUTTemplate)
	group.DELETE("/templates/:name", controllersV1.DELETETemplate)
	group.GET("/history", controllersV1.GETHistory)
}
