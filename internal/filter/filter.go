// Package filter computes the visible subset of a price snapshot.
package filter

import (
	"github.com/sanvivo/price-dashboard/internal/types"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// DefaultDesignatedPharmacies are the pharmacy ids hidden by the
// hide-designated-pharmacy filter: the display name, the legacy vendor id and
// the spelling the pricing API uses.
var DefaultDesignatedPharmacies = []string{"Sanvivo", "8I6qNL3zUifl8peYH9Tu1TcOXSt1", "sanvivo"}

// Membership answers group membership lookups.
type Membership interface {
	Contains(id, group string) bool
	IsConcrete(group string) bool
}

// State holds the user-controlled filter toggles.
type State struct {
	ShowOnlyChanges        bool `json:"showOnlyChanges"`
	HideDesignatedPharmacy bool `json:"hideDesignatedPharmacy"`
}

// Criteria is everything the engine needs to decide visibility.
type Criteria struct {
	Filters              State
	Mode                 viewmode.Mode
	SelectedGroup        string
	Groups               Membership
	DesignatedPharmacies []string
}

// Apply returns the rows passing every active gate, in input order.
// The input slice is not modified.
func Apply(rows []types.PriceRow, c Criteria) []types.PriceRow {
	visible := make([]types.PriceRow, 0, len(rows))
	for _, row := range rows {
		if Keep(row, c) {
			visible = append(visible, row)
		}
	}
	return visible
}

// Keep evaluates the conjunction of the group, change and pharmacy gates.
func Keep(row types.PriceRow, c Criteria) bool {
	return passesGroup(row, c) && passesChanges(row, c) && passesPharmacy(row, c)
}

func passesGroup(row types.PriceRow, c Criteria) bool {
	if c.Mode != viewmode.GroupOnly || c.Groups == nil || !c.Groups.IsConcrete(c.SelectedGroup) {
		return true
	}
	return c.Groups.Contains(row.ID, c.SelectedGroup)
}

func passesChanges(row types.PriceRow, c Criteria) bool {
	if !c.Filters.ShowOnlyChanges {
		return true
	}
	return row.Trend.IsChange()
}

func passesPharmacy(row types.PriceRow, c Criteria) bool {
	if !c.Filters.HideDesignatedPharmacy {
		return true
	}
	for _, name := range c.DesignatedPharmacies {
		if row.PharmacyID == name {
			return false
		}
	}
	return true
}
