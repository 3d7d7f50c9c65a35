package report

import (
	"strconv"
	"strings"
)

// maxSheetNameLen is the platform cap on worksheet names. Keeping one rune
// below Excel's 31-character limit matches the upstream report's behavior.
const maxSheetNameLen = 30

// sheetNamer maps category text to worksheet names. The same instance
// serves both sheet creation and the summary-sheet hyperlinks, so a target
// can never drift from the sheet it points at. Distinct categories that
// sanitize to the same truncated name get a numeric suffix.
type sheetNamer struct {
	byCategory map[string]string
	used       map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{
		byCategory: make(map[string]string),
		used:       make(map[string]bool),
	}
}

// Name returns the worksheet name for a category, allocating one on first
// use.
func (n *sheetNamer) Name(category string) string {
	if name, ok := n.byCategory[category]; ok {
		return name
	}
	name := sanitizeSheetName(category)
	if n.used[name] {
		for i := 2; ; i++ {
			suffix := " " + strconv.Itoa(i)
			candidate := truncateRunes(name, maxSheetNameLen-len([]rune(suffix))) + suffix
			if !n.used[candidate] {
				name = candidate
				break
			}
		}
	}
	n.byCategory[category] = name
	n.used[name] = true
	return name
}

// sanitizeSheetName strips the characters worksheet names cannot carry and
// truncates to the platform cap.
func sanitizeSheetName(s string) string {
	r := strings.NewReplacer("[", "", "]", "", "/", "", "'", "")
	s = strings.TrimSpace(r.Replace(s))
	if s == "" {
		s = "-"
	}
	return truncateRunes(s, maxSheetNameLen)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
