package detectionHandler

import (
	"context"

	detectionService "MoodLingo/internal/api/detection/service"
	"MoodLingo/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DetectionHandler struct {
	log              *logrus.Logger
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService

	// streams outlive the fiber ctx, they are bound to this instead.
	streamCtx    context.Context
	cancelStream context.CancelFunc
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
) *DetectionHandler {
	streamCtx, cancel := context.WithCancel(context.Background())
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		middleware:       middleware,
		streamCtx:        streamCtx,
		cancelStream:     cancel,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("request_id", h.middleware.GetRequestID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/video_feed", h.VideoFeed)
	srv.Get("/detection_results", h.DetectionResults)

	ws := srv.Group("/ws")
	ws.Use("/detections", wsMiddleware)
	ws.Get("/detections", websocket.New(h.handleDetectionsWebSocket))
}

// Close ends every open video and websocket stream.
func (h *DetectionHandler) Close() {
	h.cancelStream()
}
