package detectionService

import (
	"context"
	"fmt"

	"MoodLingo/internal/api/detection"
	"MoodLingo/internal/entity"
	contextPkg "MoodLingo/pkg/context"
	"MoodLingo/pkg/imaging"
	"MoodLingo/pkg/log"
)

func (s *detectionService) CameraAvailable(ctx context.Context) bool {
	return s.camera.Available(ctx)
}

func (s *detectionService) label(index int) entity.Emotion {
	if index < 0 || index >= len(s.labels) {
		return entity.EmotionUnknown
	}
	return s.labels[index]
}

func (s *detectionService) DetectFrame(ctx context.Context, frame []byte) ([]entity.DetectionResult, error) {
	img, err := s.utils.DecodeJPEG(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrInvalidFrame, err)
	}
	gray := imaging.Grayscale(img)

	faces, err := s.detector.DetectFaces(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: detect faces: %v", detection.ErrInferenceFailed, err)
	}

	results := make([]entity.DetectionResult, 0, len(faces))
	for _, face := range faces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tensor := imaging.PreprocessFace(gray, face.Rect())
		if tensor == nil {
			continue
		}

		scores, err := s.classifier.ClassifyEmotion(tensor)
		if err != nil {
			return nil, fmt.Errorf("%w: classify emotion: %v", detection.ErrInferenceFailed, err)
		}

		results = append(results, entity.DetectionResult{
			Box:     face,
			Emotion: s.label(imaging.Argmax(scores)),
		})
	}

	return results, nil
}

func (s *detectionService) AnnotateFrame(frame []byte, results []entity.DetectionResult) ([]byte, error) {
	if len(results) == 0 {
		return frame, nil
	}

	img, err := s.utils.DecodeJPEG(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrInvalidFrame, err)
	}

	labels := make([]imaging.Label, 0, len(results))
	for _, r := range results {
		labels = append(labels, imaging.Label{Rect: r.Box.Rect(), Text: string(r.Emotion)})
	}

	return s.utils.EncodeJPEG(imaging.Annotate(img, labels))
}

func (s *detectionService) CurrentDetections(ctx context.Context) ([]entity.DetectionResult, error) {
	frame, err := s.camera.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrFrameUnavailable, err)
	}

	return s.DetectFrame(ctx, frame)
}

// NextAnnotatedFrame reads one frame and draws the detections on it. When
// inference fails the raw frame is returned so the stream keeps going.
func (s *detectionService) NextAnnotatedFrame(ctx context.Context) ([]byte, error) {
	frame, err := s.camera.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrFrameUnavailable, err)
	}

	results, err := s.DetectFrame(ctx, frame)
	if err != nil {
		s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Streaming frame without annotations")
		return frame, nil
	}

	annotated, err := s.AnnotateFrame(frame, results)
	if err != nil {
		return frame, nil
	}
	return annotated, nil
}
