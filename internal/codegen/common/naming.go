package common

import (
	"strings"
	"unicode"
)

// ToPascalCase joins words split on underscores, dashes and spaces,
// capitalizing each word. Lowercases word interiors, so it suits
// all-lowercase source names ("data_path" -> "DataPath"); use ExportName
// for catalog names that may already carry interior capitals.
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}

	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})

	var result strings.Builder
	for _, word := range words {
		if len(word) > 0 {
			result.WriteString(strings.ToUpper(string(word[0])))
			if len(word) > 1 {
				result.WriteString(strings.ToLower(word[1:]))
			}
		}
	}

	return result.String()
}

// ToCamelCase is ToPascalCase with a lowercase first letter, used for
// generated parameter names ("data_path" -> "dataPath").
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(string(pascal[0])) + pascal[1:]
}

func ToSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		isUpper := r >= 'A' && r <= 'Z'

		if i > 0 && isUpper {
			prevIsLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			// "XMLParser" becomes "xml_parser", not "x_m_l_parser"
			nextIsLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'

			if prevIsLower || nextIsLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// ExportName turns a catalog name into an exported Go identifier.
// Underscore-separated words are capitalized and joined with their
// interior case kept, so "bpy_struct" -> "BpyStruct" and
// "ArrayModifier" stays "ArrayModifier". Names starting with a digit
// are prefixed with "Num".
func ExportName(s string) string {
	if s == "" {
		return ""
	}

	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})

	var result strings.Builder
	for _, word := range words {
		result.WriteString(strings.ToUpper(string(word[0])))
		if len(word) > 1 {
			result.WriteString(word[1:])
		}
	}
	return sanitizeLeadingDigit(result.String())
}

// sanitizeLeadingDigit prefixes names that start with a digit with
// "Num" to keep identifiers valid in target languages.
func sanitizeLeadingDigit(name string) string {
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Num" + name
	}
	return name
}
