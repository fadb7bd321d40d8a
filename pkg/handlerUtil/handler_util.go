package handlerUtil

import (
	"MoodLingo/pkg/log"
	"MoodLingo/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

const TraceIDHeader = "X-Trace-ID"

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the envelope used by the translation routes.
type StatusResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Original *string `json:"original,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Handle writes err as {"error": ...}. Errors carrying a status keep their
// own message, anything else is reported as an internal error.
func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	code, message := h.classify(c, requestID, err, path, operation)
	return c.Status(code).JSON(ErrorResponse{Error: message})
}

// HandleStatus writes err in the {"status":"error","message":...} envelope.
// original is echoed back when it is not nil.
func (h *ErrorHandler) HandleStatus(c *fiber.Ctx, requestID string, err error, path string, operation string, original *string) error {
	code, message := h.classify(c, requestID, err, path, operation)
	return c.Status(code).JSON(StatusResponse{
		Status:   "error",
		Message:  message,
		Original: original,
	})
}

// classify maps err to a status and message. Server side failures are
// logged with a trace id that is returned in the X-Trace-ID header.
func (h *ErrorHandler) classify(c *fiber.Ctx, requestID string, err error, path string, operation string) (int, string) {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		if respErr.Code >= fiber.StatusInternalServerError {
			c.Set(TraceIDHeader, log.ErrorWithTraceID(fields, "Operation failed with error response"))
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}
		return respErr.Code, respErr.Err.Error()
	}

	c.Set(TraceIDHeader, log.ErrorWithTraceID(fields, "Unexpected error"))

	return fiber.StatusInternalServerError, "An unexpected error occurred"
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
