// Package dashboard holds the price table state and the transitions that
// drive it. Reduce is pure; Runtime owns one State and performs the effects
// Reduce asks for.
package dashboard

import (
	"github.com/sanvivo/price-dashboard/internal/filter"
	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/types"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// Operator-facing failure messages.
const (
	MsgFetchCurrentFailed   = "Failed to fetch current prices. Please try again later."
	MsgLoadHistoricalFailed = "Failed to load data from %s. Please try again."
	MsgLoadTimestampsFailed = "Failed to load timestamps. Please try again later."
)

// Filter toggle names accepted by SetFilter.
const (
	FilterShowOnlyChanges        = "showOnlyChanges"
	FilterHideDesignatedPharmacy = "hideDesignatedPharmacy"
)

// State is everything the price table renders from.
type State struct {
	Rows              []types.PriceRow
	SnapshotTimestamp string
	Timestamps        []string

	Filters              filter.State
	Mode                 viewmode.Mode
	SelectedGroup        string
	Groups               groups.Collection
	DesignatedPharmacies []string

	Loading bool
	Error   string
	Warning string

	// Token identifies the most recent fetch. Completions carrying another
	// non-zero token are stale.
	Token uint64
}

// Initial returns the state before anything is loaded.
func Initial(designated []string) State {
	if designated == nil {
		designated = filter.DefaultDesignatedPharmacies
	}
	return State{
		Rows:                 []types.PriceRow{},
		Timestamps:           []string{},
		Mode:                 viewmode.All,
		SelectedGroup:        groups.AllProducts,
		Groups:               groups.New(),
		DesignatedPharmacies: designated,
	}
}

// Criteria returns the filter criteria for the state.
func (s State) Criteria() filter.Criteria {
	return filter.Criteria{
		Filters:              s.Filters,
		Mode:                 s.Mode,
		SelectedGroup:        s.SelectedGroup,
		Groups:               s.Groups,
		DesignatedPharmacies: s.DesignatedPharmacies,
	}
}

// Visible returns the rows that pass every active filter.
func (s State) Visible() []types.PriceRow {
	return filter.Apply(s.Rows, s.Criteria())
}

// IsKnownFilter reports whether name is a filter toggle.
func IsKnownFilter(name string) bool {
	return name == FilterShowOnlyChanges || name == FilterHideDesignatedPharmacy
}
