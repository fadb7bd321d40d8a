package detectionService

import (
	"context"

	"MoodLingo/internal/entity"
	"MoodLingo/pkg/utils"
	"github.com/sirupsen/logrus"
)

type FaceDetector interface {
	DetectFaces(frame []byte) ([]entity.BoundingBox, error)
}

type EmotionClassifier interface {
	ClassifyEmotion(tensor []float32) ([]float32, error)
}

// FrameSource yields JPEG frames from the camera.
type FrameSource interface {
	Read(ctx context.Context) ([]byte, error)
	Available(ctx context.Context) bool
}

type IDetectionService interface {
	CameraAvailable(ctx context.Context) bool
	DetectFrame(ctx context.Context, frame []byte) ([]entity.DetectionResult, error)
	AnnotateFrame(frame []byte, results []entity.DetectionResult) ([]byte, error)
	CurrentDetections(ctx context.Context) ([]entity.DetectionResult, error)
	NextAnnotatedFrame(ctx context.Context) ([]byte, error)
}

type detectionService struct {
	log        *logrus.Logger
	camera     FrameSource
	detector   FaceDetector
	classifier EmotionClassifier
	labels     []entity.Emotion
	utils      utils.IUtils
}

func NewDetectionService(
	log *logrus.Logger,
	camera FrameSource,
	detector FaceDetector,
	classifier EmotionClassifier,
	labels []entity.Emotion,
	utils utils.IUtils,
) IDetectionService {
	if len(labels) == 0 {
		labels = entity.DefaultEmotions
	}
	return &detectionService{
		log:        log,
		camera:     camera,
		detector:   detector,
		classifier: classifier,
		labels:     labels,
		utils:      utils,
	}
}
