package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Envelope is the uniform success wrapper every handler responds with.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// ErrorBody is the uniform error wrapper produced by the global error handler.
type ErrorBody struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// JSON writes a success envelope.
func JSON(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// NewHTTPErrorHandler returns an Echo error handler that normalizes every
// handler error into the envelope. Server faults are logged with detail and
// returned with a generic message so nothing internal leaks to the caller.
func NewHTTPErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"
		details := []string{}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			if httpErr.Internal != nil {
				details = append(details, httpErr.Internal.Error())
			}
			message = fmt.Sprintf("%v", httpErr.Message)
		}

		if code >= http.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method": c.Request().Method,
				"path":   c.Request().URL.Path,
			}).WithError(err).Error("request failed")
			message = "Internal server error"
			details = []string{}
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(code); err != nil {
				log.WithError(err).Error("failed to write error response")
			}
			return
		}

		body := ErrorBody{
			StatusCode: code,
			Message:    message,
			Success:    false,
			Errors:     details,
		}
		if err := c.JSON(code, body); err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}
