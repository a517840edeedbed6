package util

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/response"
)

// devMode exposes error causes and stack traces in responses. It is switched
// off at startup in production.
var devMode atomic.Bool

func init() {
	devMode.Store(true)
}

func SetDevMode(enabled bool) {
	devMode.Store(enabled)
}

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
	Meta       any
}

type OrderedSuccessResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Meta       any                  `json:"meta,omitempty"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code       int
	ErrorCode  string
	Message    string
	DevMessage string
	Details    any
	Trace      string
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("form error: %s", e.Message)
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

// SuccessResponse sends the standard JSON envelope for a successful request.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	response := OrderedSuccessResponse{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
		Meta:       params.Meta,
	}
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(response)
}

// ErrorResponse sends the standard JSON envelope for a failed request.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	response := OrderedErrorResponse{
		Success: false,
		Code:    params.ErrorCode,
		Message: params.Message,
	}
	if params.Details != nil {
		response.Details = params.Details
	}
	if devMode.Load() {
		if len(errs) > 0 && errs[0] != nil {
			response.DevMessage = errs[0].Error()
			response.Trace = errorTrace(errs[0])
		}

		if params.DevMessage != "" {
			response.DevMessage = params.DevMessage
		}
		if params.Trace != "" {
			response.Trace = params.Trace
		}
	}

	errorCode := params.Code
	if params.Code == 0 {
		errorCode = fiber.StatusInternalServerError
	}
	return c.Status(errorCode).JSON(response)
}

// DomainErrorResponse maps err to its HTTP status and error code. Causes of
// provider and internal failures are only shown in dev mode.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var formErr *FormError
	if errors.As(err, &formErr) {
		return ErrorResponse(c, ErrorResponseFormat{
			Code:      fiber.StatusBadRequest,
			ErrorCode: string(apperrors.ErrTypeInvalidRequest),
			Message:   formErr.Message,
			Details:   formErr.Errors,
		})
	}

	errType := apperrors.TypeOf(err)
	message := apperrors.MessageOf(err)
	if errType == apperrors.ErrTypeInternal {
		message = "internal server error"
	}
	return ErrorResponse(c, ErrorResponseFormat{
		Code:      StatusFor(errType),
		ErrorCode: string(errType),
		Message:   message,
	}, err)
}

func StatusFor(errType apperrors.ErrorType) int {
	switch errType {
	case apperrors.ErrTypeInvalidRequest, apperrors.ErrTypeEmptyInput:
		return fiber.StatusBadRequest
	case apperrors.ErrTypeNotFound:
		return fiber.StatusNotFound
	case apperrors.ErrTypeConflict:
		return fiber.StatusConflict
	case apperrors.ErrTypeSourceNotEmbedded:
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func errorTrace(err error) string {
	var de *apperrors.DomainError
	if errors.As(err, &de) && len(de.Stack) > 0 {
		return string(de.Stack)
	}
	return string(debug.Stack())
}
