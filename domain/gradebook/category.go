package gradebook

// Category is a performance band derived from a student's overall average
type Category int

const (
	Excellent Category = iota
	Good
	Satisfactory
	Poor
	Unsatisfactory
)

// Band thresholds are exclusive lower bounds on the overall average.
const (
	excellentAbove    = 4.6
	goodAbove         = 3.6
	satisfactoryAbove = 2.6
)

var categoryLabels = [...]string{
	Excellent:      "Отл.",
	Good:           "Уд.",
	Satisfactory:   "Тр.",
	Poor:           "Дв.",
	Unsatisfactory: "Нз.",
}

var categoryNames = [...]string{
	Excellent:      "excellent",
	Good:           "good",
	Satisfactory:   "satisfactory",
	Poor:           "poor",
	Unsatisfactory: "unsatisfactory",
}

// Categories lists every category in report order
func Categories() []Category {
	return []Category{Excellent, Good, Satisfactory, Poor, Unsatisfactory}
}

// Categorize maps an overall average to its band. An average of exactly 0
// means no scores were present and is always Unsatisfactory.
func Categorize(avg float64) Category {
	switch {
	case avg == 0:
		return Unsatisfactory
	case avg > excellentAbove:
		return Excellent
	case avg > goodAbove:
		return Good
	case avg > satisfactoryAbove:
		return Satisfactory
	default:
		return Poor
	}
}

// Label returns the abbreviation written into the report sheet
func (c Category) Label() string {
	if c < Excellent || c > Unsatisfactory {
		return ""
	}
	return categoryLabels[c]
}

// String returns the English category name
func (c Category) String() string {
	if c < Excellent || c > Unsatisfactory {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalText encodes the category by its English name
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
