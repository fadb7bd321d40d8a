package entity

import "image"

type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionDisgust  Emotion = "disgust"
	EmotionFear     Emotion = "fear"
	EmotionHappy    Emotion = "happy"
	EmotionNeutral  Emotion = "neutral"
	EmotionSad      Emotion = "sad"
	EmotionSurprise Emotion = "surprise"
	EmotionUnknown  Emotion = "unknown"
)

// DefaultEmotions is the label order the classifier was trained with.
var DefaultEmotions = []Emotion{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionNeutral,
	EmotionSad,
	EmotionSurprise,
}

type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

type DetectionResult struct {
	Box     BoundingBox
	Emotion Emotion
}
