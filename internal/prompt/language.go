package prompt

import (
	"fmt"
	"strings"
)

// Language is a target language for category names.
type Language struct {
	Code string
	Name string
}

// English is the default; it adds no prompt context.
var English = Language{Code: "en", Name: "English"}

var languages = []Language{
	English,
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "es", Name: "Spanish"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "nl", Name: "Dutch"},
	{Code: "pl", Name: "Polish"},
	{Code: "sv", Name: "Swedish"},
	{Code: "da", Name: "Danish"},
	{Code: "no", Name: "Norwegian"},
	{Code: "fi", Name: "Finnish"},
	{Code: "cs", Name: "Czech"},
	{Code: "tr", Name: "Turkish"},
	{Code: "ru", Name: "Russian"},
	{Code: "uk", Name: "Ukrainian"},
	{Code: "ja", Name: "Japanese"},
	{Code: "ko", Name: "Korean"},
	{Code: "zh", Name: "Chinese"},
}

// Languages returns the supported languages, English first.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ParseLanguage accepts an ISO 639-1 code or an English language name,
// case-insensitively. An empty string is English.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, nil
	}
	// tolerate locale forms such as fr_FR or pt-BR
	code := strings.ToLower(s)
	if i := strings.IndexAny(code, "_-"); i > 0 {
		code = code[:i]
	}
	for _, l := range languages {
		if l.Code == code || strings.EqualFold(l.Name, s) {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unsupported language %q", s)
}

// IsDefault reports whether l is English.
func (l Language) IsDefault() bool {
	return l.Code == "" || l.Code == English.Code
}

// BuildLanguageContext asks for category names in l. It returns "" for English.
func BuildLanguageContext(l Language) string {
	if l.IsDefault() {
		return ""
	}
	return fmt.Sprintf("Write the category and subcategory names in %s. Keep the \"Category : Subcategory\" format in English.", l.Name)
}
