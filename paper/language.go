package paper

import "github.com/abadojack/whatlanggo"

const DefaultLanguage = "en"

// LanguageDetector guesses the language of a text. It never fails; callers
// get DefaultLanguage when there is not enough signal.
type LanguageDetector interface {
	Detect(text string) string
}

type WhatlangDetector struct{}

func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

func (wd *WhatlangDetector) Detect(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang == -1 || !info.IsReliable() {
		return DefaultLanguage
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return DefaultLanguage
	}
	return code
}
