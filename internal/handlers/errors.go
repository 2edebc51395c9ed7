package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gnsons/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return services.ErrValidation
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if e.Param() != "" {
			fields[e.Field()] = fmt.Sprintf("failed on the '%s=%s' rule", e.Tag(), e.Param())
		} else {
			fields[e.Field()] = fmt.Sprintf("failed on the '%s' rule", e.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}

// parseBody decodes the request body into dst and validates it.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	return validateStruct(dst)
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized, "No token provided"
	case errors.Is(err, services.ErrTokenInvalid):
		return fiber.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, services.ErrSubjectNotFound):
		return fiber.StatusUnauthorized, "Admin not found"
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, "Admin access required"
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidStatus):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrAlreadyExists):
		return fiber.StatusConflict, "Admin already exists"
	case errors.Is(err, services.ErrTransitionDenied), errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge, err.Error()
	}
	return fiber.StatusInternalServerError, err.Error()
}

// ErrorHandler renders every error returned by a handler or middleware as
// {"success": false, "error": ..., "details": ...}.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("Request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		body := fiber.Map{"success": false, "error": message}
		var verr *ValidationError
		if errors.As(err, &verr) {
			body["details"] = verr.Fields
		}
		return c.Status(status).JSON(body)
	}
}

// Guards are the auth middlewares routes are composed with.
type Guards struct {
	Required fiber.Handler
	Optional fiber.Handler
	Admin    fiber.Handler
}

func sideEffectJSON(e services.SideEffect) fiber.Map {
	return fiber.Map{"attempted": e.Attempted, "succeeded": e.OK()}
}
