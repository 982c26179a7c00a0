package core

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		max   int
		want  string
	}{
		{"shorter is unchanged", "AB100", 40, "AB100"},
		{"one below limit is unchanged", strings.Repeat("x", 39), 40, strings.Repeat("x", 39)},
		{"at limit drops last character", strings.Repeat("x", 40), 40, strings.Repeat("x", 39)},
		{"over limit keeps max-1", strings.Repeat("x", 75), 40, strings.Repeat("x", 39)},
		{"counts characters not bytes", "ÉÉÉÉ", 4, "ÉÉÉ"},
		{"empty stays empty", "", 20, ""},
		{"limit one", "abc", 1, ""},
		{"limit zero", "abc", 0, ""},
		{"negative limit", "abc", -3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.value, tt.max))
		})
	}
}

func TestTruncate_Properties(t *testing.T) {
	values := []string{
		"",
		"a",
		"AB100",
		strings.Repeat("7", 19),
		strings.Repeat("7", 20),
		strings.Repeat("Ü", 55),
		"mixed ascii and ünïcödé text that runs past fifty characters easily",
	}
	limits := []int{1, 2, 5, MaxManufacturerCodeLen, MaxPartNumberLen, MaxDescriptionLen}

	for _, v := range values {
		for _, l := range limits {
			once := Truncate(v, l)
			assert.Equal(t, once, Truncate(once, l), "idempotence for %q at %d", v, l)
			assert.Less(t, utf8.RuneCountInString(once), l, "length bound for %q at %d", v, l)
			if utf8.RuneCountInString(v) < l {
				assert.Equal(t, v, once, "short value %q at %d must be unchanged", v, l)
			}
		}
	}
}

func TestNormalizePart_MirrorsAfterTruncation(t *testing.T) {
	desc := strings.Repeat("b", 49) + "tail"
	n := normalizePart("ab-100/rev", desc)

	assert.Equal(t, "ab-100/rev", n.PartNumber)
	assert.Equal(t, "AB-100/REV", n.PartNumberUpper)
	assert.Equal(t, strings.Repeat("b", 49), n.Description)
	assert.Equal(t, strings.Repeat("B", 49), n.DescriptionUpper)
}
