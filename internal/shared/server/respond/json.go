package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes payload with 200.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes payload with 201.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
