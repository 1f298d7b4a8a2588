package v1

import (
	"net/http"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	apimodels "github.com/USA-RedDragon/arm-panel/internal/server/apimodels/v1"
	"github.com/gin-gonic/gin"
)

func GETBridge(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bridgeResponse(c, p.Connection.Status()))
}

func bridgeResponse(c *gin.Context, status panel.Status) apimodels.BridgeResponse {
	resp := apimodels.BridgeResponse{
		State:    string(status.State),
		Endpoint: status.Endpoint,
	}
	if config, ok := c.MustGet("config").(*config.Config); ok {
		resp.DefaultEndpoint = config.Bridge.DefaultEndpoint
	}
	return resp
}

func POSTBridgeConnect(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	var req apimodels.POSTConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := p.Connection.Connect(c.Request.Context(), req.Endpoint); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bridgeResponse(c, p.Connection.Status()))
}

func POSTBridgeDisconnect(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	p.Connection.Disconnect()
	c.JSON(http.StatusOK, bridgeResponse(c, p.Connection.Status()))
}
