package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

func toSnakeCase(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	var prevChar rune
	var prevWasUpper bool

	for i, char := range s {
		isUpper := unicode.IsUpper(char)
		isLetter := unicode.IsLetter(char)
		isDigit := unicode.IsDigit(char)

		if i > 0 && isUpper && !prevWasUpper && (unicode.IsLower(prevChar) || unicode.IsDigit(prevChar)) {
			result.WriteRune('_')
		}

		if isLetter || isDigit {
			result.WriteRune(unicode.ToLower(char))
		} else if char == ' ' || char == '-' || char == '_' {
			result.WriteRune('_')
		}

		prevChar = char
		prevWasUpper = isUpper
	}

	return strings.Trim(result.String(), "_")
}

func toCamelCase(s string) string {
	pascal := toPascalCase(s)
	if pascal == "" {
		return ""
	}
	return uncapitalize(pascal)
}

func toPascalCase(s string) string {
	var result strings.Builder
	for _, word := range splitWords(s) {
		result.WriteString(capitalize(strings.ToLower(word)))
	}
	return result.String()
}

func toKebabCase(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, "-")
}

func splitWords(s string) []string {
	if s == "" {
		return nil
	}

	var words []string
	var current strings.Builder
	var prevChar rune
	var prevWasUpper bool

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, char := range s {
		isUpper := unicode.IsUpper(char)
		isLetter := unicode.IsLetter(char)
		isDigit := unicode.IsDigit(char)

		switch {
		case char == ' ' || char == '_' || char == '-' || char == '.':
			flush()
		case i > 0 && isUpper && !prevWasUpper && (unicode.IsLower(prevChar) || unicode.IsDigit(prevChar)):
			flush()
			current.WriteRune(char)
		case isLetter || isDigit:
			current.WriteRune(char)
		}

		prevChar = char
		prevWasUpper = isUpper
	}
	flush()

	return words
}

// capitalize upper-cases the first rune only, unlike pascal which also
// lower-cases the rest of each word.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func uncapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func indentLines(indent int, text string) string {
	if text == "" {
		return ""
	}

	indentStr := strings.Repeat(" ", indent)
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = indentStr + line
		}
	}

	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

func comment(prefix, text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = prefix
			continue
		}
		lines[i] = prefix + " " + line
	}

	return strings.Join(lines, "\n")
}

// javaDoc renders text as a /** ... */ block, also valid as Scaladoc.
func javaDoc(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return "/**\n" + comment(" *", text) + "\n */"
}

func toString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func generateUUID() string {
	return uuid.New().String()
}
