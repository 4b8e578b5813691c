// Package domain holds the lead funnel types shared across the leads and
// partners contexts.
package domain

// Status is a lead's position in the sales funnel.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusQualified Status = "Qualified"
	StatusConverted Status = "Converted"
	StatusLost      Status = "Lost"
)

// LostLevel is the sentinel level for Lost. Lost is not on the progression
// ladder; the sentinel keeps level arithmetic total.
const LostLevel = -1

// Level returns the ordinal hierarchy level used by the scoring policy.
// New=0, Contacted=1, Qualified=2, Converted=3. Lost is off the ladder
// and returns the -1 sentinel, as does any unknown value.
func (s Status) Level() int {
	switch s {
	case StatusNew:
		return 0
	case StatusContacted:
		return 1
	case StatusQualified:
		return 2
	case StatusConverted:
		return 3
	default:
		return LostLevel
	}
}

// IsValid reports whether s is one of the five funnel statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

// All returns the funnel statuses in ladder order, Lost last.
func All() []Status {
	return []Status{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}
}
