package export

import "strings"

// DefaultBaseName is used when a requested file name is blank.
const DefaultBaseName = "Отчет ИСПДн"

// Extension is appended to every delivered document.
const Extension = ".docx"

const forbiddenChars = `\/:*?"<>|`

// SanitizeFileName strips path-breaking characters, trims whitespace, falls
// back to DefaultBaseName and appends Extension unless the name already ends
// with it in any case.
func SanitizeFileName(name string) string {
	return sanitize(name, DefaultBaseName)
}

func sanitize(name, fallback string) string {
	cleaned := strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenChars, r) {
			return -1
		}
		return r
	}, name))
	if cleaned == "" {
		cleaned = fallback
	}
	if strings.HasSuffix(strings.ToLower(cleaned), Extension) {
		return cleaned
	}
	return cleaned + Extension
}
