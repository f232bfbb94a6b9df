package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/scburnad/patient-medication-app/internal/platform/validate"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// ErrorHandler renders errors as {"detail": ...}. HTTP errors keep their
// code and message; anything else is logged and reported as a generic 500.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var detail any = "Internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				detail = m
			case validate.Errors:
				// Field errors are rendered as a list, not as their
				// error string.
				detail = []validate.FieldError(m)
			case error:
				detail = m.Error()
			case nil:
				detail = http.StatusText(code)
			default:
				detail = m
			}
		}

		if code >= http.StatusInternalServerError {
			l := zerolog.Ctx(c.Request().Context())
			if l.GetLevel() == zerolog.Disabled {
				l = &logger
			}
			rid, _ := c.Get("request_id").(string)
			l.Error().Err(err).Str("request_id", rid).Int("status", code).Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, ErrorResponse{Detail: detail})
		}
		if werr != nil {
			logger.Error().Err(werr).Int("status", code).Msg("write error response")
		}
	}
}
