package notify

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ThresholdSpec is an inclusive percentage band. Battery thresholds and bare
// moisture percentages are single-point bands.
type ThresholdSpec struct {
	Min int
	Max int
}

func (t ThresholdSpec) Contains(pct int) bool {
	return pct >= t.Min && pct <= t.Max
}

// IsBoundary reports whether a battery threshold sits at 0% or 100%, where
// only an exact match can ever be reached.
func (t ThresholdSpec) IsBoundary() bool {
	return t.Min == t.Max && (t.Min == 0 || t.Min == 100)
}

func (t ThresholdSpec) String() string {
	if t.Min == t.Max {
		return fmt.Sprintf("%d%%", t.Min)
	}
	return fmt.Sprintf("%d-%d%%", t.Min, t.Max)
}

// ParseThreshold reads tags such as "20%", "0-2%" or "5 - 0 %". Bounds are
// normalized so Min <= Max. A tag with a single readable number becomes a
// single-point band; a tag with none is rejected.
func ParseThreshold(tag string) (ThresholdSpec, bool) {
	matches := numberPattern.FindAllString(tag, 2)
	if len(matches) == 0 {
		return ThresholdSpec{}, false
	}

	bounds := make([]int, 0, 2)
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		bounds = append(bounds, int(math.Round(v)))
	}

	switch len(bounds) {
	case 0:
		return ThresholdSpec{}, false
	case 1:
		return ThresholdSpec{Min: bounds[0], Max: bounds[0]}, true
	}

	lo, hi := bounds[0], bounds[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	return ThresholdSpec{Min: lo, Max: hi}, true
}

// ParseBatteryThresholds returns the distinct battery levels in the tags,
// highest first. Only the first number of a tag is used.
func ParseBatteryThresholds(tags []string) []ThresholdSpec {
	seen := make(map[int]bool, len(tags))
	out := make([]ThresholdSpec, 0, len(tags))
	for _, tag := range tags {
		matches := numberPattern.FindAllString(tag, 1)
		if len(matches) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(matches[0], 64)
		if err != nil {
			continue
		}
		level := int(math.Round(v))
		if seen[level] {
			continue
		}
		seen[level] = true
		out = append(out, ThresholdSpec{Min: level, Max: level})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Min > out[j].Min })
	return out
}

// ParseMoistureThresholds returns the distinct bands in the tags in the order
// the user configured them.
func ParseMoistureThresholds(tags []string) []ThresholdSpec {
	seen := make(map[ThresholdSpec]bool, len(tags))
	out := make([]ThresholdSpec, 0, len(tags))
	for _, tag := range tags {
		spec, ok := ParseThreshold(tag)
		if !ok || seen[spec] {
			continue
		}
		seen[spec] = true
		out = append(out, spec)
	}
	return out
}
