package translation

import (
	"MoodLingo/pkg/response"
	"net/http"
)

var (
	ErrMissingText            = response.NewError(http.StatusBadRequest, "Missing text in request")
	ErrEmptyText              = response.NewError(http.StatusBadRequest, "Empty text provided")
	ErrInvalidDirection       = response.NewError(http.StatusBadRequest, "Invalid direction")
	ErrAllServicesFailed      = response.NewError(http.StatusInternalServerError, "All translation services failed")
	ErrTranslationUnavailable = response.NewError(http.StatusInternalServerError, "Translation service temporarily unavailable")
)

// InvalidDirection names the rejected direction in the message.
func InvalidDirection(direction string) error {
	return &response.Error{Code: http.StatusBadRequest, Err: invalidDirectionError(direction)}
}

type invalidDirectionError string

func (e invalidDirectionError) Error() string {
	return "Invalid direction: " + string(e)
}

func (e invalidDirectionError) Is(target error) bool {
	return target == ErrInvalidDirection
}
