package classifier

import "strings"

// Kazakh has nine letters absent from Russian; conversely ы, э, ё and щ are
// rare in Kazakh text. Counting both sets is enough to tell the scripts apart
// on article-sized input.
const kazakhLetters = "әіңғүұқөһ"

var russianIndicators = []rune{'ы', 'э', 'ё', 'щ'}

// DetectLanguage reports "kz" or "ru" for the given text, or "unknown" when
// the text is empty.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}

	lower := strings.ToLower(text)

	kzCount := 0
	for _, r := range lower {
		if strings.ContainsRune(kazakhLetters, r) {
			kzCount++
		}
	}

	ruCount := 0
	for _, r := range russianIndicators {
		ruCount += strings.Count(lower, string(r))
	}

	switch {
	case kzCount > ruCount:
		return "kz"
	case ruCount > kzCount:
		return "ru"
	case strings.ContainsAny(lower, "қңү"):
		return "kz"
	default:
		return "ru"
	}
}
