package validation

import (
	"errors"

	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request types. Validate may normalize
// the request (trimming whitespace, for example) before checking it.
type Validatable interface {
	Validate() error
}

// BindAndValidate fills payload from the path parameters and the body,
// then validates it. Failures are returned as 400 *errs.HTTPError.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		message := "Invalid request body"
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if m, ok := echoErr.Message.(string); ok {
				message = m
			}
		}
		return errs.NewBadRequestError(message, false, nil, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError("Validation failed", true, nil, fieldErrors(err), nil)
	}

	return nil
}
