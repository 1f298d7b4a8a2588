package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/USA-RedDragon/arm-panel/internal/library"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/gin-gonic/gin"
)

// StatusFor maps an operation error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, panel.ErrInput),
		errors.Is(err, library.ErrInvalidName),
		errors.Is(err, library.ErrEmptyScript),
		errors.Is(err, library.ErrScriptTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, panel.ErrNotConnected),
		errors.Is(err, panel.ErrInvalidState),
		errors.Is(err, panel.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, panel.ErrTransport),
		errors.Is(err, panel.ErrRequest):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "Try again later"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func getPanel(c *gin.Context) (*panel.Panel, bool) {
	p, ok := c.MustGet("panel").(*panel.Panel)
	if !ok {
		slog.Error("Failed to get panel from context")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
	}
	return p, ok
}

func getLibrary(c *gin.Context) (*library.Library, bool) {
	lib, ok := c.MustGet("library").(*library.Library)
	if !ok || lib == nil {
		slog.Error("Failed to get library from context")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return nil, false
	}
	return lib, true
}
