package translationHandler

import (
	"errors"
	"time"

	"MoodLingo/internal/api/translation"
	contextPkg "MoodLingo/pkg/context"
	"MoodLingo/pkg/handlerUtil"
	"MoodLingo/pkg/log"
	"MoodLingo/pkg/response"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const requestTimeout = 30 * time.Second

func (h *TranslationHandler) Translate(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing translation request")

	if !ctx.Is("json") {
		return errHandler.HandleStatus(ctx, requestID, translation.ErrMissingText, ctx.Path(), "parse_request_body", nil)
	}

	var req translation.TranslateRequest
	if err := jsoniter.Unmarshal(ctx.Body(), &req); err != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Debug("Could not parse translation body")
		return errHandler.HandleStatus(ctx, requestID, translation.ErrMissingText, ctx.Path(), "parse_request_body", nil)
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleStatus(ctx, requestID, translation.ErrMissingText, ctx.Path(), "validate_request", nil)
	}

	direction, err := req.ParseDirection()
	if err != nil {
		return errHandler.HandleStatus(ctx, requestID, err, ctx.Path(), "validate_request", nil)
	}

	result, err := h.translationService.Translate(c, *req.Text, direction)
	if err != nil {
		var respErr *response.Error
		if !errors.As(err, &respErr) {
			err = translation.ErrTranslationUnavailable
		}
		return errHandler.HandleStatus(ctx, requestID, err, ctx.Path(), "translate", nil)
	}

	if !result.Succeeded() {
		return errHandler.HandleStatus(ctx, requestID, translation.ErrAllServicesFailed, ctx.Path(), "translate", &result.Original)
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"service":    result.Service,
		"direction":  result.Direction,
	}).Info("Translation successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, translation.TranslateResponse{
		Status:     string(result.Status),
		Original:   result.Original,
		Translated: result.Translated,
		Direction:  string(result.Direction),
		Service:    result.Service,
	})
}
