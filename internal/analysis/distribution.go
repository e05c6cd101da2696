package analysis

import (
	"fmt"

	"gokundoluk/domain/gradebook"
)

// CategoryShare is one line of the category side table
type CategoryShare struct {
	Category gradebook.Category `json:"category"`
	Label    string             `json:"label"`
	Count    int                `json:"count"`
	Percent  float64            `json:"percent"`
}

// PercentText formats the share the way the report shows it ("12.50%")
func (s CategoryShare) PercentText() string {
	return fmt.Sprintf("%.2f%%", s.Percent)
}

// Distribution counts students per category, in category order
type Distribution struct {
	Total  int             `json:"total"`
	Shares []CategoryShare `json:"shares"`
}

// Distribute builds the category distribution. With no students every
// percentage is 0.
func Distribute(reports []gradebook.StudentReport) Distribution {
	counts := make(map[gradebook.Category]int)
	for _, r := range reports {
		counts[r.Category]++
	}

	d := Distribution{Total: len(reports)}
	for _, c := range gradebook.Categories() {
		share := CategoryShare{Category: c, Label: c.Label(), Count: counts[c]}
		if d.Total > 0 {
			share.Percent = float64(share.Count) / float64(d.Total) * 100
		}
		d.Shares = append(d.Shares, share)
	}
	return d
}
