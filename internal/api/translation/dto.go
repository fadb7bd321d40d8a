package translation

import (
	"MoodLingo/internal/entity"
	jsoniter "github.com/json-iterator/go"
)

type TranslateRequest struct {
	Text      *string             `json:"text" validate:"required"`
	Direction jsoniter.RawMessage `json:"direction"`
}

// ParseDirection defaults to en2bn only when the field is absent. Any other
// value that is not a string is reported verbatim.
func (r TranslateRequest) ParseDirection() (entity.Direction, error) {
	if len(r.Direction) == 0 {
		return entity.DirectionEnToBn, nil
	}

	var direction string
	if err := jsoniter.Unmarshal(r.Direction, &direction); err != nil {
		return "", InvalidDirection(string(r.Direction))
	}
	return entity.Direction(direction), nil
}

type TranslateResponse struct {
	Status     string `json:"status"`
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Direction  string `json:"direction"`
	Service    string `json:"service"`
}
