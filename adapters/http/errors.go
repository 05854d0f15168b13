package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/utils/log"
)

// ErrorHandler renders every error as domain.ErrorResponse. Server errors are
// logged and reported to Sentry; without sentry.Init the report is a no-op.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := domain.ErrorResponse{Error: "Server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		resp.Error = fmt.Sprint(he.Message)
		if he.Internal != nil {
			resp.Details = he.Internal.Error()
		}
	} else {
		resp.Details = err.Error()
	}

	logger := log.WithCtx(c.Request().Context()).With(
		zap.Int("status", code),
		zap.String("path", c.Path()),
	)
	if code >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err))
		sentry.CaptureException(err)
	} else {
		logger.Debug("Request rejected", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
