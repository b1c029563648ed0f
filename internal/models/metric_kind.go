package models

// MetricKind tags a numeric record field so validation and clamping rules
// dispatch on the kind rather than on the field name.
type MetricKind int

const (
	// Timing values are seconds. Negative values are clamped to zero.
	Timing MetricKind = iota
	// Size values are bytes. Negative values are rejected.
	Size
	// Count values are discrete codes or tallies.
	Count
)

func (k MetricKind) String() string {
	switch k {
	case Timing:
		return "timing"
	case Size:
		return "size"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}
