package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/USA-RedDragon/arm-panel/internal/db/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

func GETHistory(c *gin.Context) {
	db, ok := c.MustGet("db").(*gorm.DB)
	if !ok || db == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Audit trail is disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	var (
		commands []models.Command
		err      error
	)
	if kind := c.Query("kind"); kind != "" {
		commands, err = models.ListCommandsByKind(db, models.CommandKind(kind), limit)
	} else {
		commands, err = models.ListRecentCommands(db, limit)
	}
	if err != nil {
		slog.Error("Failed to list commands", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	total, err := models.CountCommands(db)
	if err != nil {
		slog.Error("Failed to count commands", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Try again later"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "commands": commands})
}
