package v1

import (
	"log/slog"
	"net/http"

	apimodels "github.com/USA-RedDragon/arm-panel/internal/server/apimodels/v1"
	"github.com/gin-gonic/gin"
)

func GETSession(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	authenticated, err := p.Gate.IsAuthenticated(c.Request.Context(), c.GetString("session_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, apimodels.SessionResponse{Authenticated: authenticated})
}

func POSTSession(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	var req apimodels.POSTSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sessionID := c.GetString("session_id")
	granted, err := p.Gate.CheckPasscode(c.Request.Context(), sessionID, req.Passcode)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !granted {
		slog.Warn("Rejected passcode", "ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, apimodels.SessionResponse{Error: p.Gate.LockError(sessionID)})
		return
	}
	c.JSON(http.StatusOK, apimodels.SessionResponse{Authenticated: true})
}
