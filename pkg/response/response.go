package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-registry-api/internal/models"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

// JSON sends a success response of the shape {message, <key>: payload}.
func JSON(c *gin.Context, status int, message string, key string, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	body := gin.H{"message": message}
	if key != "" {
		body[key] = payload
	}
	c.JSON(status, body)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, key string, payload interface{}) {
	JSON(c, http.StatusCreated, message, key, payload)
}

// Paginated sends a list response with pagination metadata.
func Paginated(c *gin.Context, message string, key string, payload interface{}, pagination *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		key:          payload,
		"pagination": pagination,
	})
}

// Error sends an error response converting the error to the common
// {message, errors?, error?} structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")

	body := gin.H{"message": appErr.Message}
	if len(appErr.Details) > 0 {
		body["errors"] = appErr.Details
	}
	if appErr.Status >= http.StatusInternalServerError && appErr.Err != nil {
		body["error"] = appErr.Err.Error()
	}
	c.JSON(appErr.Status, body)
}
