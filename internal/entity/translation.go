package entity

type Direction string

const (
	DirectionEnToBn Direction = "en2bn"
	DirectionBnToEn Direction = "bn2en"
)

func (d Direction) Valid() bool {
	return d == DirectionEnToBn || d == DirectionBnToEn
}

// Languages returns the source and target language codes for d.
func (d Direction) Languages() (source string, target string) {
	switch d {
	case DirectionEnToBn:
		return "en", "bn"
	case DirectionBnToEn:
		return "bn", "en"
	default:
		return "", ""
	}
}

type TranslationStatus string

const (
	TranslationSuccess TranslationStatus = "success"
	TranslationFailure TranslationStatus = "error"
)

// TranslationResult is either a success carrying Translated and Service,
// or a failure carrying Reason. Original is set in both cases.
type TranslationResult struct {
	Status     TranslationStatus
	Original   string
	Translated string
	Direction  Direction
	Service    string
	Reason     string
}

func (r TranslationResult) Succeeded() bool {
	return r.Status == TranslationSuccess
}

func NewTranslationSuccess(original, translated string, direction Direction, service string) TranslationResult {
	return TranslationResult{
		Status:     TranslationSuccess,
		Original:   original,
		Translated: translated,
		Direction:  direction,
		Service:    service,
	}
}

func NewTranslationFailure(original, reason string) TranslationResult {
	return TranslationResult{
		Status:   TranslationFailure,
		Original: original,
		Reason:   reason,
	}
}
