package gradebook

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSheetNameLength = 31
	fallbackSheetName  = "Предмет"
)

var sheetNameReplacer = strings.NewReplacer(
	"[", "(", "]", ")", ":", " ", "*", " ", "?", " ", "/", "-", "\\", "-",
)

// SheetName maps a subject name to a valid worksheet name. Applying it to
// its own output changes nothing.
func SheetName(name string) string {
	name = strings.TrimFunc(sheetNameReplacer.Replace(name), isSheetNameEdge)
	return strings.TrimRightFunc(truncateRunes(name, maxSheetNameLength), isSheetNameEdge)
}

// worksheet names may not start or end with an apostrophe
func isSheetNameEdge(r rune) bool {
	return r == '\'' || unicode.IsSpace(r)
}

// SheetNames assigns every subject of the grade its own raw sheet name, in
// grade order. Worksheet names compare case-insensitively, so names that
// collide after sanitizing, or with the Result sheet, get a " (n)" suffix.
func (g Grade) SheetNames() []string {
	taken := map[string]bool{strings.ToLower(ResultSheet): true}
	names := make([]string, len(g.Subjects))
	for i, s := range g.Subjects {
		base := SheetName(s.Name)
		if base == "" {
			base = fallbackSheetName
		}
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			stem := truncateRunes(base, maxSheetNameLength-utf8.RuneCountInString(suffix))
			name = strings.TrimRightFunc(stem, isSheetNameEdge) + suffix
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
