package core

import (
	"strings"
	"unicode/utf8"
)

// Column capacities of the catalog store.
const (
	MaxManufacturerCodeLen = 20
	MaxPartNumberLen       = 40
	MaxDescriptionLen      = 50
)

// Truncate shortens value to fit a column of maxLength characters.
// A value shorter than maxLength is returned as is; anything else keeps
// its first maxLength-1 characters. Over-long input is never rejected.
func Truncate(value string, maxLength int) string {
	if maxLength <= 1 {
		return ""
	}
	if utf8.RuneCountInString(value) < maxLength {
		return value
	}
	return string([]rune(value)[:maxLength-1])
}

// normalizedPart carries the truncated text fields of a catalog entry and
// their upper-cased search mirrors.
type normalizedPart struct {
	PartNumber       string
	PartNumberUpper  string
	Description      string
	DescriptionUpper string
}

func normalizePart(partNumber, description string) normalizedPart {
	pn := Truncate(partNumber, MaxPartNumberLen)
	desc := Truncate(description, MaxDescriptionLen)
	return normalizedPart{
		PartNumber:       pn,
		PartNumberUpper:  strings.ToUpper(pn),
		Description:      desc,
		DescriptionUpper: strings.ToUpper(desc),
	}
}
