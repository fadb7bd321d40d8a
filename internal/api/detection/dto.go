package detection

type DetectionType string

const (
	FaceDetection         DetectionType = "FACE"
	EmotionClassification DetectionType = "EMOTION"
)

type DetectionDTO struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Emotion string `json:"emotion"`
}

type DetectionResultsResponse struct {
	Detections []DetectionDTO `json:"detections"`
}
