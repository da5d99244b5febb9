package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wedding-seating/internal/lock"
	"wedding-seating/internal/service"
	"wedding-seating/internal/storage"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorData `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

// InternalError answers 500 with the underlying message so the admin
// screen and the cron caller can see what failed. The request logger
// records it too.
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

// respondError maps service and storage errors onto the envelope.
func respondError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	switch {
	case errors.Is(err, service.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR",
			strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.As(err, &conflict):
		Error(c, http.StatusConflict, "CONFLICT", conflict.Reason)
	case errors.Is(err, service.ErrAmbiguous):
		Error(c, http.StatusConflict, "AMBIGUOUS", "More than one guest matches that name; try your email")
	case errors.Is(err, service.ErrNoRSVP):
		NotFound(c, "No RSVP found")
	case errors.Is(err, service.ErrNotSeated):
		NotFound(c, "No seating assignment yet")
	case errors.Is(err, storage.ErrNotFound):
		NotFound(c, "Not found")
	case errors.Is(err, lock.ErrLocked):
		Error(c, http.StatusConflict, "LOCKED", "Seat assignment is already running")
	default:
		InternalError(c, err)
	}
}
