package money

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
)

// Count is the number of bills or coins counted for one face value.
type Count struct {
	Face     decimal.Decimal
	Quantity int64
}

// Subtotal returns Face × Quantity.
func (c Count) Subtotal() decimal.Decimal {
	return c.Face.Mul(decimal.NewFromInt(c.Quantity))
}

var defaultDenominations = map[string][]string{
	"PEN": {"200", "100", "50", "20", "10", "5", "2", "1", "0.50", "0.20", "0.10"},
	"USD": {"100", "50", "20", "10", "5", "2", "1", "0.50", "0.25", "0.10", "0.05", "0.01"},
}

// DefaultDenominations returns the built-in face values for a currency,
// largest first, or nil if none are known.
func DefaultDenominations(currency string) []decimal.Decimal {
	faces := defaultDenominations[strings.ToUpper(currency)]
	out := make([]decimal.Decimal, 0, len(faces))
	for _, f := range faces {
		out = append(out, decimal.RequireFromString(f))
	}
	return out
}

// ParseDenominations parses a list of face values and sorts them largest first.
func ParseDenominations(faces []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(faces))
	for _, f := range faces {
		d, err := Parse("denominations", f)
		if err != nil {
			return nil, err
		}
		if !d.IsPositive() {
			return nil, apperrors.Validation("denominations", "face value %s must be positive", f)
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GreaterThan(out[j]) })
	return out, nil
}

// Total sums the counted faces. The result is exact.
func Total(counts []Count) decimal.Decimal {
	total := decimal.Zero
	for _, c := range counts {
		total = total.Add(c.Subtotal())
	}
	return total
}

// ParseCounts parses "face=quantity" pairs, e.g. "100=2", "0.50=1".
// Repeated faces are summed.
func ParseCounts(pairs []string) ([]Count, error) {
	var counts []Count
	for _, p := range pairs {
		face, qty, ok := strings.Cut(p, "=")
		if !ok {
			return nil, apperrors.Validation("count", "expected face=quantity, got %q", p)
		}
		f, err := Parse("count", face)
		if err != nil {
			return nil, err
		}
		if !f.IsPositive() {
			return nil, apperrors.Validation("count", "face value %s must be positive", face)
		}
		q, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
		if err != nil || q < 0 {
			return nil, apperrors.Validation("count", "invalid quantity %q for %s", qty, face)
		}
		counts = mergeCount(counts, Count{Face: f, Quantity: q})
	}
	return counts, nil
}

func mergeCount(counts []Count, c Count) []Count {
	for i := range counts {
		if counts[i].Face.Equal(c.Face) {
			counts[i].Quantity += c.Quantity
			return counts
		}
	}
	return append(counts, c)
}

// CheckCounts rejects negative quantities and faces outside allowed.
func CheckCounts(counts []Count, allowed []decimal.Decimal) error {
	for _, c := range counts {
		if c.Quantity < 0 {
			return apperrors.Validation("count", "%s has a negative quantity", c.Face)
		}
	}
	return CheckFaces(counts, allowed)
}

// CheckFaces rejects counts whose face value is not in the allowed set.
// An empty set allows any face.
func CheckFaces(counts []Count, allowed []decimal.Decimal) error {
	if len(allowed) == 0 {
		return nil
	}
	for _, c := range counts {
		found := false
		for _, a := range allowed {
			if a.Equal(c.Face) {
				found = true
				break
			}
		}
		if !found {
			return apperrors.Validation("count", "%s is not a known denomination", c.Face)
		}
	}
	return nil
}

// Sheet expands counts onto the full denomination list, largest first, so
// uncounted faces show as zero.
func Sheet(counts []Count, faces []decimal.Decimal) []Count {
	out := make([]Count, 0, len(faces))
	for _, f := range faces {
		c := Count{Face: f}
		for _, in := range counts {
			if in.Face.Equal(f) {
				c.Quantity += in.Quantity
			}
		}
		out = append(out, c)
	}
	return out
}
