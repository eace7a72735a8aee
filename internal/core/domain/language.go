package domain

// Language is a selectable destination language for report translation,
// identified by its ISO 639-1 code.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

const (
	LanguageAuto    = "auto"
	LanguageEnglish = "en"
)

// SupportedLanguages lists the destination languages the application offers,
// in display order.
func SupportedLanguages() []Language {
	return []Language{
		{Code: "en", Name: "English"},
		{Code: "hi", Name: "Hindi"},
		{Code: "kn", Name: "Kannada"},
		{Code: "te", Name: "Telugu"},
		{Code: "ta", Name: "Tamil"},
		{Code: "mr", Name: "Marathi"},
	}
}

// LanguageByCode resolves a supported language by its code.
func LanguageByCode(code string) (Language, bool) {
	for _, lang := range SupportedLanguages() {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}
