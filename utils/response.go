package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func JSON201(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func JSON400(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func JSON401(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}

func JSON403(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{"error": message})
}

func JSON404(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

func JSON409(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, gin.H{"error": message})
}

func JSON410(c *gin.Context, message string) {
	c.JSON(http.StatusGone, gin.H{"error": message})
}

func JSON413(c *gin.Context, message string) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": message})
}

func JSON422(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": message})
}

func JSON500(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func JSON502(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, gin.H{"error": message})
}
