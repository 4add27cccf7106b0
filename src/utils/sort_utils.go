package utils

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CodeComparer orders account codes the way the chart of accounts is shown:
// purely numeric codes compare as integers, anything else uses natural
// collation ("Item 2" before "Item 10"), and empty codes sort last.
// A CodeComparer is not safe for concurrent use; create one per sort.
type CodeComparer struct {
	col *collate.Collator
}

func NewCodeComparer() *CodeComparer {
	return &CodeComparer{col: collate.New(language.Und, collate.Numeric)}
}

// Compare returns -1, 0 or 1.
func (c *CodeComparer) Compare(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	if isDigits(a) && isDigits(b) {
		return compareDigits(a, b)
	}
	return c.col.CompareString(a, b)
}

// CompareText is a plain locale-aware comparison, used for secondary keys.
func (c *CodeComparer) CompareText(a, b string) int {
	return c.col.CompareString(a, b)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// compareDigits compares two digit strings by integer value without
// overflowing on long codes.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
