// Package selector lets the user pick one entry from a list of candidates,
// either through an external fuzzy finder or an in-process picker.
package selector

import (
	"context"
	"fmt"
	"strings"
)

// Selector presents labels and returns the index of the chosen one. The bool
// is false when nothing was chosen, whether the user declined or the picker
// failed.
type Selector interface {
	Select(ctx context.Context, labels []string, header string) (int, bool)
}

// Func adapts a function to Selector.
type Func func(ctx context.Context, labels []string, header string) (int, bool)

// Select calls f.
func (f Func) Select(ctx context.Context, labels []string, header string) (int, bool) {
	return f(ctx, labels, header)
}

// None never selects anything. It stands in when no picker can run.
type None struct{}

// Select always returns false.
func (None) Select(context.Context, []string, string) (int, bool) {
	return -1, false
}

// Choose presents items by their String form and returns the chosen item.
func Choose[T fmt.Stringer](ctx context.Context, s Selector, items []T, header string) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.String()
	}

	idx, ok := s.Select(ctx, labels, header)
	if !ok || idx < 0 || idx >= len(items) {
		return zero, false
	}
	return items[idx], true
}

// ChooseRanked is Choose with items presented in order of similarity to
// target. The returned item is the one the user picked regardless of order.
func ChooseRanked[T fmt.Stringer](ctx context.Context, s Selector, items []T, header, target string) (T, bool) {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.String()
	}

	order := Rank(target, labels)
	ranked := make([]T, len(items))
	for i, idx := range order {
		ranked[i] = items[idx]
	}
	return Choose(ctx, s, ranked, header)
}

// cleanLabel keeps a label on one line with no field separators.
func cleanLabel(label string) string {
	return strings.Join(strings.Fields(label), " ")
}
