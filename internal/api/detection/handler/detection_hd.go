package detectionHandler

import (
	"bufio"
	"errors"
	"time"

	"MoodLingo/internal/api/detection"
	"MoodLingo/internal/entity"
	contextPkg "MoodLingo/pkg/context"
	"MoodLingo/pkg/handlerUtil"
	"MoodLingo/pkg/log"
	"MoodLingo/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const (
	frameBoundary   = "frame"
	requestTimeout  = 10 * time.Second
	wsWriteDeadline = 10 * time.Second
)

func toDetectionDTOs(results []entity.DetectionResult) []detection.DetectionDTO {
	dtos := make([]detection.DetectionDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, detection.DetectionDTO{
			X:       r.Box.X,
			Y:       r.Box.Y,
			Width:   r.Box.Width,
			Height:  r.Box.Height,
			Emotion: string(r.Emotion),
		})
	}
	return dtos
}

// writeFramePart writes one multipart/x-mixed-replace part and flushes it.
func writeFramePart(w *bufio.Writer, frame []byte) error {
	if _, err := w.WriteString("--" + frameBoundary + "\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}
	return w.Flush()
}

func (h *DetectionHandler) VideoFeed(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	available := h.detectionService.CameraAvailable(c)
	cancel()
	if !available {
		return errHandler.Handle(ctx, requestID, detection.ErrCameraUnavailable, ctx.Path(), "open_camera")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Info("Video stream started")

	ctx.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary="+frameBoundary)
	ctx.Set(fiber.HeaderCacheControl, "no-cache")

	streamCtx := contextPkg.WithRequestID(h.streamCtx, requestID)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		frames := 0
		defer func() {
			h.log.WithFields(log.Fields{
				"request_id": requestID,
				"frames":     frames,
			}).Info("Video stream ended")
		}()

		for streamCtx.Err() == nil {
			frameCtx, cancelFrame := context.WithTimeout(streamCtx, requestTimeout)
			frame, err := h.detectionService.NextAnnotatedFrame(frameCtx)
			cancelFrame()
			if err != nil {
				h.log.WithFields(log.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Could not read frame")
				return
			}

			if err := writeFramePart(w, frame); err != nil {
				return
			}
			frames++
		}
	})

	return nil
}

func (h *DetectionHandler) DetectionResults(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), requestTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if !h.detectionService.CameraAvailable(c) {
		return errHandler.Handle(ctx, requestID, detection.ErrCameraUnavailable, ctx.Path(), "open_camera")
	}

	results, err := h.detectionService.CurrentDetections(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_frame")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"faces":      len(results),
		}).Debug("Detection results served")
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, detection.DetectionResultsResponse{
			Detections: toDetectionDTOs(results),
		})
	}
}

func (h *DetectionHandler) handleDetectionsWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals("request_id").(string)
	fields := log.Fields{"request_id": requestID}

	h.log.WithFields(fields).Info("Detections WebSocket client connected")
	defer h.log.WithFields(fields).Info("Detections WebSocket client disconnected")

	streamCtx, cancel := context.WithCancel(contextPkg.WithRequestID(h.streamCtx, requestID))
	defer cancel()

	// The client only ever sends control frames. A read error means it left.
	go func() {
		defer cancel()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.WithFields(fields).Warnf("Detections WebSocket error: %v", err)
				}
				return
			}
		}
	}()

	for streamCtx.Err() == nil {
		results, err := h.detectionService.CurrentDetections(streamCtx)
		if err != nil {
			if streamCtx.Err() != nil {
				return
			}
			h.log.WithFields(fields).Warnf("Detection failed: %v", err)
			_ = c.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			_ = c.WriteJSON(handlerUtil.ErrorResponse{Error: errorMessage(err)})
			return
		}

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteDeadline)); err != nil {
			return
		}
		if err := c.WriteJSON(detection.DetectionResultsResponse{Detections: toDetectionDTOs(results)}); err != nil {
			h.log.WithFields(fields).Debugf("Error writing detections: %v", err)
			return
		}
	}
}

func errorMessage(err error) string {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return respErr.Err.Error()
	}
	return "Detection failed"
}
