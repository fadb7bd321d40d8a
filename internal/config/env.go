package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	Port        string
	Env         string
	CORSOrigins string
	RateLimit   float64
	RateBurst   int

	TranslateEndpoints      []string
	TranslateAttemptTimeout time.Duration
	GeminiAPIKey            string
	GeminiModel             string
	OpenAIAPIKey            string
	OpenAIModel             string
	OpenAIBaseURL           string

	CameraDevice      string
	CameraInputFormat string
	CameraFPS         int
	FFmpegPath        string

	FaceDetectionURL string
	EmotionURL       string

	LabelsPath  string
	LabelsS3Key string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSBucket          string
	AWSEndpoint        string
}

// LoadAppConfig reads the process environment. Unset or unparsable values
// fall back to their defaults.
func LoadAppConfig() AppConfig {
	return AppConfig{
		Port:        getEnv("APP_PORT", "5001"),
		Env:         getEnv("APP_ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		RateLimit:   getEnvFloat("RATE_LIMIT_RPS", 50),
		RateBurst:   getEnvInt("RATE_LIMIT_BURST", 100),

		TranslateEndpoints:      getEnvList("TRANSLATE_ENDPOINTS"),
		TranslateAttemptTimeout: getEnvDuration("TRANSLATE_ATTEMPT_TIMEOUT", 5*time.Second),
		GeminiAPIKey:            os.Getenv("GEMINI_API_KEY"),
		GeminiModel:             os.Getenv("GEMINI_MODEL_NAME"),
		OpenAIAPIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:             os.Getenv("OPENAI_CHAT_MODEL"),
		OpenAIBaseURL:           os.Getenv("OPENAI_BASE_URL"),

		CameraDevice:      getEnv("CAMERA_DEVICE", "/dev/video0"),
		CameraInputFormat: getEnv("CAMERA_INPUT_FORMAT", "v4l2"),
		CameraFPS:         getEnvInt("CAMERA_FPS", 10),
		FFmpegPath:        getEnv("FFMPEG_PATH", "ffmpeg"),

		FaceDetectionURL: os.Getenv("AI_FACE_DETECTION_URL"),
		EmotionURL:       os.Getenv("AI_EMOTION_URL"),

		LabelsPath:  getEnv("LABELS_PATH", "model_inference/class_names.json"),
		LabelsS3Key: os.Getenv("LABELS_S3_KEY"),

		AWSRegion:          getEnv("AWS_REGION", "ap-southeast-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSBucket:          os.Getenv("AWS_BUCKET_NAME"),
		AWSEndpoint:        os.Getenv("AWS_ENDPOINT"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
