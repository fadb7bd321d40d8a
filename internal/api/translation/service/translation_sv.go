package translationService

import (
	"context"
	"strings"

	"MoodLingo/internal/api/translation"
	"MoodLingo/internal/entity"
	contextPkg "MoodLingo/pkg/context"
	"MoodLingo/pkg/log"
)

func (s *translationService) Translate(ctx context.Context, text string, direction entity.Direction) (entity.TranslationResult, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return entity.TranslationResult{}, translation.ErrEmptyText
	}
	if !direction.Valid() {
		return entity.TranslationResult{}, translation.InvalidDirection(string(direction))
	}

	source, target := direction.Languages()
	requestID := contextPkg.GetRequestID(ctx)

	for _, ep := range s.endpoints {
		if err := ctx.Err(); err != nil {
			return entity.NewTranslationFailure(cleaned, err.Error()), nil
		}

		translated, err := s.attempt(ctx, ep, cleaned, source, target)
		if err != nil {
			s.log.WithFields(log.Fields{
				"request_id": requestID,
				"service":    ep.Name(),
				"direction":  direction,
				"error":      err.Error(),
			}).Error("Translation endpoint failed")
			continue
		}

		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"service":    ep.Name(),
			"direction":  direction,
			"original":   cleaned,
			"translated": translated,
		}).Debug("Translation successful")

		return entity.NewTranslationSuccess(cleaned, translated, direction, ep.Name()), nil
	}

	if err := ctx.Err(); err != nil {
		return entity.NewTranslationFailure(cleaned, err.Error()), nil
	}

	return entity.NewTranslationFailure(cleaned, translation.ErrAllServicesFailed.Error()), nil
}

func (s *translationService) attempt(ctx context.Context, ep Endpoint, text, source, target string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()

	translated, err := ep.Translate(attemptCtx, text, source, target)
	if err != nil {
		return "", err
	}

	translated = strings.TrimSpace(translated)
	if translated == "" {
		return "", errEmptyResult
	}
	return translated, nil
}
