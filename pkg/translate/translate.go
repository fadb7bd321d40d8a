// Package translate holds the remote services a translation request can
// be routed to. Every endpoint turns text in one language into another
// and reports failure through its error.
package translate

import (
	"errors"
	"fmt"
)

var ErrEmptyTranslation = errors.New("endpoint returned an empty translation")

// Languages maps the ISO 639-1 codes in use to the names given to LLMs.
var Languages = map[string]string{
	"en": "English",
	"bn": "Bengali",
}

func LanguageName(code string) string {
	if name, ok := Languages[code]; ok {
		return name
	}
	return code
}

func Prompt(source, target string) string {
	return fmt.Sprintf(
		"Translate the following text from %s to %s. Reply with only the translation.",
		LanguageName(source), LanguageName(target),
	)
}
