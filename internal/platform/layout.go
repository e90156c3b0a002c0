package platform

// fallbackRatio is used for platform keys the table does not know.
const fallbackRatio = "9:16"

// RatioGroup is a set of platforms that can share one render.
type RatioGroup struct {
	Ratio     string   `json:"ratio"`
	Platforms []string `json:"platforms"`
}

// GroupByRatio buckets platform keys by default ratio, keeping first-seen order
// for both groups and members.
func GroupByRatio(keys []string) []RatioGroup {
	var groups []RatioGroup
	index := make(map[string]int)

	for _, key := range keys {
		ratio := fallbackRatio
		if i, ok := byKey[key]; ok {
			ratio = profiles[i].DefaultRatio
		}

		gi, ok := index[ratio]
		if !ok {
			gi = len(groups)
			index[ratio] = gi
			groups = append(groups, RatioGroup{Ratio: ratio})
		}
		groups[gi].Platforms = append(groups[gi].Platforms, key)
	}
	return groups
}

// Rect is a pixel rectangle with its origin at the top-left corner.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the part of a width x height frame outside the safe-zone
// insets. Insets are clamped so the area never goes negative.
func (z SafeZones) Area(width, height int) Rect {
	left := width * clampPercent(z.Left) / 100
	right := width * clampPercent(z.Right) / 100
	top := height * clampPercent(z.Top) / 100
	bottom := height * clampPercent(z.Bottom) / 100

	w := width - left - right
	if w < 0 {
		w = 0
	}
	h := height - top - bottom
	if h < 0 {
		h = 0
	}
	return Rect{X: left, Y: top, Width: w, Height: h}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
