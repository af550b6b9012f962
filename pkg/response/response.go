package response

import (
	"github.com/gofiber/fiber/v2"

	"github.com/loopforge/api/internal/model"
)

// Error codes
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeJobNotFound     = "JOB_NOT_FOUND"
	CodeEncoderFailure  = "ENCODER_FAILURE"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeServiceError    = "SERVICE_ERROR"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Error(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ValidationError(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, CodeValidationError, message, details)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, message, nil)
}

func ServiceError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, CodeServiceError, message, nil)
}

// AppError maps the core error taxonomy onto HTTP statuses.
func AppError(c *fiber.Ctx, err *model.AppError) error {
	switch err.Code {
	case model.CodeValidation, model.CodeInvalidArgument:
		return Error(c, fiber.StatusBadRequest, string(err.Code), err.Message, nil)
	case model.CodeNotFound, model.CodeJobNotFound:
		return Error(c, fiber.StatusNotFound, string(err.Code), err.Message, nil)
	case model.CodeEncoderFailure:
		return Error(c, fiber.StatusInternalServerError, string(err.Code), err.Message, nil)
	case model.CodePersistenceUnavailable:
		return Error(c, fiber.StatusServiceUnavailable, string(err.Code), err.Message, nil)
	default:
		return ServiceError(c, err.Message)
	}
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

func Accepted(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusAccepted).JSON(data)
}
