package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
)

// Sorted returns entries in reconstruction order: timestamp ascending, with
// seq breaking ties. The input is not modified.
func Sorted(entries []model.Entry) []model.Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b model.Entry) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return out
}

// ByTarget returns the entries that move money in target, preserving order.
func ByTarget(entries []model.Entry, target model.Target) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if e.Target() == target {
			out = append(out, e)
		}
	}
	return out
}

// ByTimeRange returns entries with from <= Timestamp <= to, preserving order.
// A zero bound is open.
func ByTimeRange(entries []model.Entry, from, to time.Time) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if !from.IsZero() && e.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SeqRange returns entries with from <= Seq < to. A zero upper bound is open.
func SeqRange(entries []model.Entry, from, to uint64) []model.Entry {
	var out []model.Entry
	for _, e := range entries {
		if e.Seq < from || (to != 0 && e.Seq >= to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Filter narrows the movement list by channel.
type Filter string

const (
	FilterAll     Filter = "ALL"
	FilterCash    Filter = "CASH"
	FilterDigital Filter = "DIGITAL"
)

// ParseFilter accepts ALL, CASH or DIGITAL in any case. Empty means ALL.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToUpper(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCash, FilterDigital:
		return f, nil
	default:
		return "", apperrors.Validation("filter", "must be one of ALL, CASH, DIGITAL; got %q", s)
	}
}

// Match reports whether the entry passes the filter.
func (f Filter) Match(e model.Entry) bool {
	switch f {
	case FilterCash:
		return e.Target().IsCash()
	case FilterDigital:
		return !e.Target().IsCash()
	default:
		return true
	}
}
