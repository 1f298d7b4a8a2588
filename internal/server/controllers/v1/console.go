package v1

import (
	"net/http"

	apimodels "github.com/USA-RedDragon/arm-panel/internal/server/apimodels/v1"
	"github.com/gin-gonic/gin"
)

func GETConsole(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, apimodels.NewConsoleResponse(p.Console.Entries()))
}

func DELETEConsole(c *gin.Context) {
	p, ok := getPanel(c)
	if !ok {
		return
	}
	p.Console.Clear()
	c.JSON(http.StatusOK, apimodels.NewConsoleResponse(p.Console.Entries()))
}

func GETConsoleArchives(c *gin.Context) {
	lib, ok := getLibrary(c)
	if !ok {
		return
	}
	names, err := lib.ListArchives(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archives": names})
}

func GETConsoleArchive(c *gin.Context) {
	lib, ok := getLibrary(c)
	if !ok {
		return
	}
	text, err := lib.ReadArchive(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}
