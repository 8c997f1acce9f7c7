package gooey

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

// easings maps persisted easing names to gween easing functions. Names follow
// the snake_case convention stored in creature documents ("in_back").
var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"in_quad":        ease.InQuad,
	"out_quad":       ease.OutQuad,
	"in_out_quad":    ease.InOutQuad,
	"out_in_quad":    ease.OutInQuad,
	"in_cubic":       ease.InCubic,
	"out_cubic":      ease.OutCubic,
	"in_out_cubic":   ease.InOutCubic,
	"out_in_cubic":   ease.OutInCubic,
	"in_quart":       ease.InQuart,
	"out_quart":      ease.OutQuart,
	"in_out_quart":   ease.InOutQuart,
	"out_in_quart":   ease.OutInQuart,
	"in_quint":       ease.InQuint,
	"out_quint":      ease.OutQuint,
	"in_out_quint":   ease.InOutQuint,
	"out_in_quint":   ease.OutInQuint,
	"in_sine":        ease.InSine,
	"out_sine":       ease.OutSine,
	"in_out_sine":    ease.InOutSine,
	"out_in_sine":    ease.OutInSine,
	"in_expo":        ease.InExpo,
	"out_expo":       ease.OutExpo,
	"in_out_expo":    ease.InOutExpo,
	"out_in_expo":    ease.OutInExpo,
	"in_circ":        ease.InCirc,
	"out_circ":       ease.OutCirc,
	"in_out_circ":    ease.InOutCirc,
	"out_in_circ":    ease.OutInCirc,
	"in_elastic":     ease.InElastic,
	"out_elastic":    ease.OutElastic,
	"in_out_elastic": ease.InOutElastic,
	"out_in_elastic": ease.OutInElastic,
	"in_back":        ease.InBack,
	"out_back":       ease.OutBack,
	"in_out_back":    ease.InOutBack,
	"out_in_back":    ease.OutInBack,
	"in_bounce":      ease.InBounce,
	"out_bounce":     ease.OutBounce,
	"in_out_bounce":  ease.InOutBounce,
	"out_in_bounce":  ease.OutInBounce,
}

// Easing returns the easing function registered under name. The empty name
// resolves to linear.
func Easing(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("easing %q: %w", name, ErrInvalidConfiguration)
	}
	return fn, nil
}

// EasingNames returns every registered easing name in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
