package utils

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeComparer_Compare(t *testing.T) {
	c := NewCodeComparer()

	assert.Equal(t, -1, c.Compare("200", "1000"), "numeric codes compare as integers")
	assert.Equal(t, 1, c.Compare("998", "205"))
	assert.Equal(t, 0, c.Compare("010", "10"))
	assert.Equal(t, -1, c.Compare("100", ""), "empty codes sort last")
	assert.Equal(t, 1, c.Compare("  ", "ZZZ"))
	assert.Equal(t, 0, c.Compare("", ""))
	assert.Negative(t, c.Compare("Item 2", "Item 10"), "natural order for mixed codes")
}

func TestCodeComparer_SortsChart(t *testing.T) {
	codes := []string{"", "470", "Item 10", "205", "Item 2", "1000", "50"}
	c := NewCodeComparer()
	sort.SliceStable(codes, func(i, j int) bool { return c.Compare(codes[i], codes[j]) < 0 })
	assert.Equal(t, []string{"50", "205", "470", "1000"}, codes[:4])
	assert.Equal(t, []string{"Item 2", "Item 10", ""}, codes[4:])
}
