package v1

import (
	"net/http"

	apimodels "github.com/USA-RedDragon/arm-panel/internal/server/apimodels/v1"
	"github.com/gin-gonic/gin"
)

func POSTMovement(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	var req apimodels.POSTMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := p.Dispatcher.ExecuteMovement(c.Request.Context(), req.Form()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Command executed"})
}

func POSTRunScript(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	var req apimodels.POSTScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := p.Dispatcher.RunScript(c.Request.Context(), req.Script); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Executing script..."})
}
