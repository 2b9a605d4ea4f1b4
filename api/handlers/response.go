package handlers

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/aquaman122/auto-report/pkg/errors"
)

// Envelope is the uniform response shape: success plus an optional
// message, data payload and error string. Stack is only filled outside
// production.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Stack   string      `json:"stack,omitempty"`
}

var production bool

// SetProduction hides raw error detail and stack traces from error
// responses. Clients always get the localized message.
func SetProduction(enabled bool) {
	production = enabled
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, err error, message string) {
	resp := Envelope{Success: false, Message: message}
	if err != nil && !production {
		resp.Error = err.Error()
		resp.Stack = string(debug.Stack())
	}
	c.JSON(apperrors.HTTPStatus(err), resp)
}

func respondStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}
