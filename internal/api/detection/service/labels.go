package detectionService

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"MoodLingo/internal/entity"
	"MoodLingo/pkg/s3"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

type LabelsConfig struct {
	S3Key string
	Path  string
}

// LoadLabels resolves the class name list written next to the trained
// model. S3 is tried first, then the local file, then the built-in order.
func LoadLabels(ctx context.Context, cfg LabelsConfig, store s3.ItfS3, log *logrus.Logger) []entity.Emotion {
	if cfg.S3Key != "" && store != nil {
		data, err := store.Download(ctx, cfg.S3Key)
		if err == nil {
			labels, err := ParseLabels(data)
			if err == nil {
				log.WithField("source", cfg.S3Key).Infof("Loaded %d emotion labels", len(labels))
				return labels
			}
			log.WithField("source", cfg.S3Key).Warnf("Invalid labels object: %v", err)
		} else {
			log.WithField("source", cfg.S3Key).Warnf("Could not download labels: %v", err)
		}
	}

	if cfg.Path != "" {
		data, err := os.ReadFile(cfg.Path)
		if err == nil {
			labels, err := ParseLabels(data)
			if err == nil {
				log.WithField("source", cfg.Path).Infof("Loaded %d emotion labels", len(labels))
				return labels
			}
			log.WithField("source", cfg.Path).Warnf("Invalid labels file: %v", err)
		} else if !errors.Is(err, os.ErrNotExist) {
			log.WithField("source", cfg.Path).Warnf("Could not read labels: %v", err)
		}
	}

	log.Info("Using default emotion labels")
	return entity.DefaultEmotions
}

// ParseLabels decodes a JSON array of class names.
func ParseLabels(data []byte) ([]entity.Emotion, error) {
	var names []string
	if err := jsoniter.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if len(names) == 0 {
		return nil, errors.New("labels list is empty")
	}

	labels := make([]entity.Emotion, 0, len(names))
	for i, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return nil, fmt.Errorf("label %d is empty", i)
		}
		labels = append(labels, entity.Emotion(name))
	}
	return labels, nil
}
