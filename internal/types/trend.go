package types

import "strings"

// Trend is the categorical change indicator between a row's current and
// previous observed price, e.g. "↑ +0.50€", "↓ -0.30€" or "New product".
type Trend string

// Trend texts produced by the pricing API.
const (
	TrendUnchanged      Trend = "→ Unchanged"
	TrendNewProduct     Trend = "New product"
	TrendFirstDataPoint Trend = "First data point"
)

const (
	markerIncrease  = "↑"
	markerDecrease  = "↓"
	markerUnchanged = "→"
)

// TrendKind classifies a Trend.
type TrendKind int

const (
	TrendKindOther TrendKind = iota
	TrendKindIncrease
	TrendKindDecrease
	TrendKindUnchanged
	TrendKindNew
	TrendKindFirstObservation
)

// String returns the string representation of the trend kind.
func (k TrendKind) String() string {
	switch k {
	case TrendKindIncrease:
		return "increase"
	case TrendKindDecrease:
		return "decrease"
	case TrendKindUnchanged:
		return "unchanged"
	case TrendKindNew:
		return "new"
	case TrendKindFirstObservation:
		return "first"
	default:
		return "other"
	}
}

// Kind classifies the trend text.
func (t Trend) Kind() TrendKind {
	s := string(t)
	switch {
	case t == TrendUnchanged:
		return TrendKindUnchanged
	case t == TrendFirstDataPoint:
		return TrendKindFirstObservation
	case t == TrendNewProduct:
		return TrendKindNew
	case strings.Contains(s, markerIncrease):
		return TrendKindIncrease
	case strings.Contains(s, markerDecrease):
		return TrendKindDecrease
	case strings.Contains(s, markerUnchanged):
		return TrendKindUnchanged
	default:
		return TrendKindOther
	}
}

// IsChange reports whether the trend is a price increase, a decrease or a new product.
func (t Trend) IsChange() bool {
	switch t.Kind() {
	case TrendKindIncrease, TrendKindDecrease, TrendKindNew:
		return true
	default:
		return false
	}
}

// Label is the short text shown next to the trend marker.
func (t Trend) Label() string {
	switch t.Kind() {
	case TrendKindIncrease:
		return strings.TrimSpace(strings.Replace(string(t), markerIncrease, "", 1))
	case TrendKindDecrease:
		return strings.TrimSpace(strings.Replace(string(t), markerDecrease, "", 1))
	case TrendKindUnchanged:
		return "Unchanged"
	case TrendKindNew:
		return "New"
	default:
		return string(t)
	}
}
