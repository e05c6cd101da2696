package gradebook

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"
)

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ParseScore extracts the first number from a gradebook cell.
// Comma decimals are accepted; cells without a number are null, never zero.
func ParseScore(cell string) null.Float64 {
	match := numberPattern.FindString(strings.TrimSpace(cell))
	if match == "" {
		return null.Float64{}
	}
	value, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return null.Float64{}
	}
	return null.Float64From(value)
}
