package airquality

// Category is one of the five ordered ISPU severity tiers.
type Category struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	Good          = Category{Level: 0, Label: "Good", Color: "#00B050"}
	Moderate      = Category{Level: 1, Label: "Moderate", Color: "#0000FF"}
	Unhealthy     = Category{Level: 2, Label: "Unhealthy", Color: "#FFFF00"}
	VeryUnhealthy = Category{Level: 3, Label: "Very Unhealthy", Color: "#FF0000"}
	Hazardous     = Category{Level: 4, Label: "Hazardous", Color: "#000000"}
)

// Categories lists the tiers from least to most severe.
var Categories = []Category{Good, Moderate, Unhealthy, VeryUnhealthy, Hazardous}

// CategoryOf maps an ISPU value to its tier. Each breakpoint is inclusive on
// the upper bound: 50 is Good, 51 is Moderate.
func CategoryOf(v float64) Category {
	switch {
	case v <= 50:
		return Good
	case v <= 100:
		return Moderate
	case v <= 200:
		return Unhealthy
	case v <= 300:
		return VeryUnhealthy
	default:
		return Hazardous
	}
}

// Worse reports whether a is more severe than b.
func (c Category) Worse(b Category) bool {
	return c.Level > b.Level
}

// IndexValue pairs a pollutant with its ISPU value.
type IndexValue struct {
	Pollutant Pollutant
	Value     float64
}

// Worst returns the most severe entry of values. Within the same tier the
// higher raw value wins; on an exact tie the earlier entry is kept. ok is
// false when values is empty.
func Worst(values []IndexValue) (worst IndexValue, ok bool) {
	for i, v := range values {
		if i == 0 {
			worst = v
			continue
		}
		cur, prev := CategoryOf(v.Value), CategoryOf(worst.Value)
		if cur.Worse(prev) || (cur.Level == prev.Level && v.Value > worst.Value) {
			worst = v
		}
	}
	return worst, len(values) > 0
}
