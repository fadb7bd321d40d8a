package translationHandler

import (
	translationService "MoodLingo/internal/api/translation/service"
	"MoodLingo/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type TranslationHandler struct {
	log                *logrus.Logger
	validator          *validator.Validate
	middleware         middleware.Middleware
	translationService translationService.ITranslationService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ts translationService.ITranslationService,
) *TranslationHandler {
	return &TranslationHandler{
		translationService: ts,
		log:                log,
		validator:          validator,
		middleware:         middleware,
	}
}

func (h *TranslationHandler) Start(srv fiber.Router) {
	srv.Post("/translate", h.Translate)
}
