package detection

import (
	"MoodLingo/pkg/response"
	"net/http"
)

var (
	ErrCameraUnavailable = response.NewError(http.StatusInternalServerError, "Camera not available")
	ErrFrameUnavailable  = response.NewError(http.StatusInternalServerError, "Unable to access video feed")
	ErrInvalidFrame      = response.NewError(http.StatusInternalServerError, "invalid frame")
	ErrInferenceFailed   = response.NewError(http.StatusInternalServerError, "inference service failed")
)
