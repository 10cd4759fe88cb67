package moderation

import (
	"github.com/abadojack/whatlanggo"
)

// Language guesses the ISO 639-1 code of text.
func Language(text string) string {
	return whatlanggo.Detect(text).Lang.Iso6391()
}
