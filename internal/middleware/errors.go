package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/telemetry"
)

// Recovery converts panics into 500 responses with a stack trace in the
// logs and a correlation ID in the body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				ctx := c.Request.Context()
				telemetry.GetContextualLogger(ctx).WithFields(logrus.Fields{
					"panic_value": fmt.Sprintf("%v", r),
					"stack_trace": string(debug.Stack()),
					"path":        c.Request.URL.Path,
				}).Error("Panic recovered in handler")

				appErr := errors.NewInternalError("An unexpected error occurred", nil).
					WithCorrelationID(telemetry.GetCorrelationID(ctx))
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(appErr))
			}
		}()
		c.Next()
	}
}

// RenderError writes an error response. Engine errors map onto their
// declared HTTP status; anything else becomes an opaque 500.
func RenderError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	correlationID := telemetry.GetCorrelationID(ctx)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		telemetry.GetContextualLogger(ctx).WithError(err).Error("Unclassified error reached the handler")
		appErr = errors.NewInternalError("An unexpected error occurred", err)
	}
	if appErr.CorrelationID == "" {
		appErr = appErr.WithCorrelationID(correlationID)
	}

	if appErr.HTTPStatus >= 500 {
		telemetry.GetContextualLogger(ctx).WithError(appErr).Error("Request failed with server error")
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, errorBody(appErr))
}

func errorBody(appErr *errors.AppError) gin.H {
	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.CorrelationID != "" {
		body["correlation_id"] = appErr.CorrelationID
	}
	return gin.H{"error": body}
}
