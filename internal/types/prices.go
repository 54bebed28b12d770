// Package types holds the price data exchanged with the remote pricing API.
package types

import "github.com/shopspring/decimal"

// Field names of a PriceRow in the order the API emits them.
const (
	FieldID         = "id"
	FieldSorte      = "Sorte"
	FieldKultivar   = "Kultivar"
	FieldPharmacyID = "Pharmacy ID"
	FieldPrice      = "Price (€/g)"
	FieldTrend      = "Trend"
)

// PriceRowFields is the declared column order used by exports.
var PriceRowFields = []string{
	FieldID,
	FieldSorte,
	FieldKultivar,
	FieldPharmacyID,
	FieldPrice,
	FieldTrend,
}

var recommendedDiscount = decimal.New(1, -2)

// PriceRow is one quoted price observation: the cheapest offer for a product
// among the tracked pharmacies.
type PriceRow struct {
	ID         string          `json:"id"`
	Sorte      string          `json:"Sorte"`
	Kultivar   string          `json:"Kultivar"`
	PharmacyID string          `json:"Pharmacy ID"`
	Price      decimal.Decimal `json:"Price (€/g)"`
	Trend      Trend           `json:"Trend"`
}

// Values returns the row's values in PriceRowFields order.
func (r PriceRow) Values() []any {
	return []any{r.ID, r.Sorte, r.Kultivar, r.PharmacyID, r.Price, string(r.Trend)}
}

// RecommendedPrice undercuts the current price by one cent, never going below zero.
func (r PriceRow) RecommendedPrice() decimal.Decimal {
	recommended := r.Price.Sub(recommendedDiscount)
	if recommended.IsNegative() {
		return decimal.Zero
	}
	return recommended
}

// Snapshot is one fetched batch of price rows tied to a single timestamp.
type Snapshot struct {
	Timestamp   string     `json:"timestamp"`
	Data        []PriceRow `json:"data"`
	SaveSuccess *bool      `json:"save_success,omitempty"`
}

// TimestampIndex lists the timestamps of retrievable historical snapshots,
// newest first as returned by the API.
type TimestampIndex struct {
	Timestamps []string `json:"timestamps"`
}
