package selector

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// trailingYearRe strips the " (1979)" rendered after titles.
var trailingYearRe = regexp.MustCompile(`\s*\(\d{4}\)$`)

// Rank returns the indexes of labels ordered by descending similarity to
// target. Ties keep their original order, and an empty target leaves the
// order unchanged.
func Rank(target string, labels []string) []int {
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}

	want := normalizeTitle(target)
	if want == "" || len(labels) < 2 {
		return order
	}

	scores := make([]float32, len(labels))
	for i, label := range labels {
		scores[i] = edlib.JaroWinklerSimilarity(want, normalizeTitle(trailingYearRe.ReplaceAllString(label, "")))
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

// normalizeTitle folds case and accents and drops punctuation so that
// "Amélie!" and "amelie" compare equal.
func normalizeTitle(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
