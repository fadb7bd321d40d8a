package config

import (
	"context"
	"fmt"
	"net/http"
	"time"

	detectionHandler "MoodLingo/internal/api/detection/handler"
	detectionService "MoodLingo/internal/api/detection/service"
	translationHandler "MoodLingo/internal/api/translation/handler"
	translationService "MoodLingo/internal/api/translation/service"
	"MoodLingo/internal/middleware"
	"MoodLingo/pkg/camera"
	"MoodLingo/pkg/s3"
	"MoodLingo/pkg/utils"
	websocketPkg "MoodLingo/pkg/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const healthMessage = "Flask server is running"

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	cfg         AppConfig
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	aiWebsocket websocketPkg.IWebsocket
	camera      *camera.Manager
	s3Client    s3.ItfS3
	translator  translationService.ITranslationService

	detection *detectionHandler.DetectionHandler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{cfg: LoadAppConfig()}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.camera == nil {
		return nil, fmt.Errorf("camera is required")
	}
	if server.aiWebsocket == nil {
		return nil, fmt.Errorf("inference client is required")
	}
	if server.translator == nil {
		return nil, fmt.Errorf("translation endpoints are required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

// WithAppConfig replaces the configuration read from the environment. It
// must come before options that depend on it.
func WithAppConfig(cfg AppConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithWebSocket(webSocket websocketPkg.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.aiWebsocket = webSocket
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Config{
			RateLimit:   s.cfg.RateLimit,
			BurstSize:   s.cfg.RateBurst,
			CORSOrigins: s.cfg.CORSOrigins,
		})
		return nil
	}
}

func WithCamera(source camera.Source) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before camera")
		}
		s.camera = camera.NewManager(source, s.log)
		return nil
	}
}

// WithS3Client is a no-op when no labels object is configured.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if s.cfg.LabelsS3Key == "" {
			return nil
		}
		client, err := s3.New(s3.Config{
			Region:          s.cfg.AWSRegion,
			AccessKeyID:     s.cfg.AWSAccessKeyID,
			SecretAccessKey: s.cfg.AWSSecretAccessKey,
			Bucket:          s.cfg.AWSBucket,
			Endpoint:        s.cfg.AWSEndpoint,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithTranslationEndpoints(endpoints ...translationService.Endpoint) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before translation endpoints")
		}
		if len(endpoints) == 0 {
			endpoints = translationService.BuildEndpoints(context.Background(), translationService.EndpointsConfig{
				Tokens:        s.cfg.TranslateEndpoints,
				GeminiAPIKey:  s.cfg.GeminiAPIKey,
				GeminiModel:   s.cfg.GeminiModel,
				OpenAIAPIKey:  s.cfg.OpenAIAPIKey,
				OpenAIModel:   s.cfg.OpenAIModel,
				OpenAIBaseURL: s.cfg.OpenAIBaseURL,
				HTTPClient:    &http.Client{Timeout: s.cfg.TranslateAttemptTimeout},
			}, s.log)
		}
		s.translator = translationService.NewRouter(s.log, endpoints, s.cfg.TranslateAttemptTimeout)
		s.log.Infof("Translation endpoints: %v", s.translator.Endpoints())
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	s.setupMiddleware()

	// Detection
	labelsCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	labels := detectionService.LoadLabels(labelsCtx, detectionService.LabelsConfig{
		S3Key: s.cfg.LabelsS3Key,
		Path:  s.cfg.LabelsPath,
	}, s.s3Client, s.log)
	cancel()

	detectionServices := detectionService.NewDetectionService(s.log, s.camera, s.aiWebsocket, s.aiWebsocket, labels, s.utils)
	s.detection = detectionHandler.New(s.log, s.middleware, detectionServices)

	// Translation
	translationHandlers := translationHandler.New(s.log, s.validator, s.middleware, s.translator)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, s.detection, translationHandlers)

	for _, h := range s.handlers {
		h.Start(s.engine)
	}
}

func (s *Server) setupMiddleware() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())
	s.engine.Use(s.middleware.NewCORSMiddleware())
	s.engine.Use(s.middleware.NewRateLimiter)
}

func (s *Server) Run() error {
	s.log.Infof("Listening on :%s", s.cfg.Port)
	return s.engine.Listen(fmt.Sprintf(":%s", s.cfg.Port))
}

// Shutdown stops open streams first so the fiber app can drain.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.detection != nil {
		s.detection.Close()
	}

	err := s.engine.ShutdownWithContext(ctx)

	if cerr := s.camera.Close(); cerr != nil {
		s.log.Warnf("Error closing camera: %v", cerr)
	}
	s.aiWebsocket.CloseConnections()
	s.translator.Close()

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": healthMessage,
		})
	})
}
