package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/campushub/school-portal-api/pkg/errors"
)

// JSON sends a success payload as {"message": ..., <payload fields>}.
// Payload keys are merged at the top level to match the API contract.
func JSON(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(status, body)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, message string, payload gin.H) {
	JSON(c, http.StatusOK, message, payload)
}

// Created responds with HTTP 201.
func Created(c *gin.Context, message string, payload gin.H) {
	JSON(c, http.StatusCreated, message, payload)
}

// Error sends a failure as {"message": ..., "error": code} with the error's status.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, gin.H{
		"message": appErr.Message,
		"error":   appErr.Code,
	})
}
