package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"prdflow/internal/logging"
)

// ProblemDetails is the RFC 7807 error envelope every API error renders as.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// ErrorHandler renders every error escaping a handler as problem+json,
// replacing echo's default {"message": ...} envelope. Internal error text
// never reaches clients; handlers choose the detail they expose.
func ErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := "An unexpected error occurred."

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			switch msg := httpErr.Message.(type) {
			case string:
				detail = msg
			case error:
				detail = msg.Error()
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(status); err != nil {
				log.Error("failed to write error response", "error", err)
			}
			return
		}

		problem := ProblemDetails{
			Type:     "about:blank",
			Title:    http.StatusText(status),
			Status:   status,
			Detail:   detail,
			Instance: c.Request().URL.Path,
		}
		c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
		c.Response().WriteHeader(status)
		if err := json.NewEncoder(c.Response()).Encode(problem); err != nil {
			log.Error("failed to write error response", "error", err)
		}
	}
}
