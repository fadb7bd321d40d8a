package translationService

import (
	"context"
	"io"
	"time"

	"MoodLingo/internal/entity"
	"github.com/sirupsen/logrus"
)

const DefaultAttemptTimeout = 5 * time.Second

// Endpoint is one remote translation service.
type Endpoint interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type ITranslationService interface {
	Translate(ctx context.Context, text string, direction entity.Direction) (entity.TranslationResult, error)
	Endpoints() []string
	Close()
}

type translationService struct {
	log            *logrus.Logger
	endpoints      []Endpoint
	attemptTimeout time.Duration
}

// NewRouter tries endpoints in the given order on every request.
func NewRouter(log *logrus.Logger, endpoints []Endpoint, attemptTimeout time.Duration) ITranslationService {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}

	ordered := make([]Endpoint, len(endpoints))
	copy(ordered, endpoints)

	return &translationService{
		log:            log,
		endpoints:      ordered,
		attemptTimeout: attemptTimeout,
	}
}

func (s *translationService) Endpoints() []string {
	names := make([]string, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		names = append(names, ep.Name())
	}
	return names
}

// Close releases endpoints holding client connections.
func (s *translationService) Close() {
	for _, ep := range s.endpoints {
		if c, ok := ep.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.log.Warnf("Error closing translation endpoint %s: %v", ep.Name(), err)
			}
		}
	}
}
