package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Message is the body of endpoints that only acknowledge an action.
type Message struct {
	Message string `json:"message"`
}

// JSON writes body with status. A zero status means 200.
func JSON[T any](ctx *gin.Context, status int, body T) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, body)
}

// Error writes an ErrorBody. A zero status means 400.
func Error(ctx *gin.Context, status int, message string, err interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, NewError(ctx, message, err))
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(ctx *gin.Context, status int, message string, err interface{}) {
	ctx.AbortWithStatusJSON(status, NewError(ctx, message, err))
}

func NewError(ctx *gin.Context, message string, err interface{}) ErrorBody {
	if e, ok := err.(error); ok {
		err = e.Error()
	}
	return ErrorBody{
		Message:   message,
		Error:     err,
		RequestID: ctx.GetString("request_id"),
	}
}
