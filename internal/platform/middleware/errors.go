package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ayushbridge/ayushbridge/internal/platform/fhir"
)

// ErrorBody is the error document returned by the non-FHIR routes.
type ErrorBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Timestamp  string `json:"timestamp"`
}

// IsFHIRPath reports whether path is served under the /fhir base.
func IsFHIRPath(path string) bool {
	return path == "/fhir" || strings.HasPrefix(path, "/fhir/")
}

// ErrorHandler returns an echo.HTTPErrorHandler that renders errors as an
// OperationOutcome on FHIR routes and as an ErrorBody elsewhere. Errors that
// are not *echo.HTTPError become a 500 with a generic message; the cause is
// only logged.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			message = httpErrorMessage(he)
			if he.Internal != nil {
				err = he.Internal
			}
		}
		if code >= 500 {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		if werr := WriteError(c, code, message); werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

// WriteError writes an error response in the shape the request path expects.
func WriteError(c echo.Context, code int, message string) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(code)
	}
	if IsFHIRPath(c.Request().URL.Path) {
		c.Response().Header().Set(echo.HeaderContentType, fhir.FHIRContentType)
		return c.JSON(code, fhir.NewOperationOutcome(outcomeSeverity(code), outcomeIssueType(code), message))
	}
	return c.JSON(code, ErrorBody{
		Error:      message,
		StatusCode: code,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func httpErrorMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}

func outcomeSeverity(code int) string {
	if code >= 500 && code != http.StatusNotImplemented && code != http.StatusGatewayTimeout {
		return fhir.IssueSeverityFatal
	}
	return fhir.IssueSeverityError
}

func outcomeIssueType(code int) string {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fhir.IssueTypeInvalid
	case http.StatusNotFound:
		return fhir.IssueTypeNotFound
	case http.StatusMethodNotAllowed, http.StatusNotAcceptable,
		http.StatusUnsupportedMediaType, http.StatusNotImplemented:
		return fhir.IssueTypeNotSupported
	case http.StatusRequestEntityTooLarge:
		return "too-costly"
	case http.StatusTooManyRequests:
		return fhir.IssueTypeThrottled
	case http.StatusGatewayTimeout:
		return fhir.IssueTypeTimeout
	}
	if code >= 500 {
		return fhir.IssueTypeException
	}
	return fhir.IssueTypeProcessing
}
