package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination and additional metadata
type Meta struct {
	ChannelID uint64 `json:"channel_id,omitempty"`
	Before    uint64 `json:"before,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// CreatedResponse returns a 201 JSON response
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Data: data})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}

	c.JSON(status, gin.H{
		"error": errInfo,
	})
}

// FromError maps a business error to the matching HTTP error response.
// Unknown errors are surfaced as an opaque 500; details stay server-side.
func FromError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidOption),
		errors.Is(err, ErrInvalidChannel), errors.Is(err, ErrNotAPoll):
		ErrorResponse(c, http.StatusBadRequest, message, err)
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrEditWindow):
		ErrorResponse(c, http.StatusForbidden, message, err)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrChannelNotFound),
		errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrMessageDeleted),
		errors.Is(err, ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, message, err)
	case errors.Is(err, ErrAlreadyVoted):
		ErrorResponse(c, http.StatusConflict, message, err)
	case errors.Is(err, ErrUnauthorized):
		ErrorResponse(c, http.StatusUnauthorized, message, err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
