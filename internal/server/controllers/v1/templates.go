package v1

import (
	"net/http"

	apimodels "github.com/USA-RedDragon/arm-panel/internal/server/apimodels/v1"
	"github.com/gin-gonic/gin"
)

func GETTemplates(c *gin.Context) {
	lib, ok := getLibrary(c)
	if !ok {
		return
	}
	templates, err := lib.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func GETTemplate(c *gin.Context) {
	lib, ok := getLibrary(c)
	if !ok {
		return
	}
	template, err := lib.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func PUTTemplate(c *gin.Context) {
	lib, ok := getLibrary(c)
	if !ok {
		return
	}
	var req apimodels.PUTTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	template, err := lib.Save(c.Request.Context(), c.Param("name"), req.Script)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func DELETETemplate(c *gin.Context) {
	lib, ok := getLibrary(c)
	if !ok {
		return
	}
	if err := lib.Delete(c.Request.Context(), c.Param("name")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
