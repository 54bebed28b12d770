package dashboard

import (
	"fmt"
	"strings"

	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/types"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// Reduce applies a to s. It never mutates s and performs no I/O.
func Reduce(s State, a Action) (State, []Effect) {
	if Stale(s, a) {
		return s, nil
	}

	switch act := a.(type) {
	case FetchCurrent:
		if s.Loading {
			return s, nil
		}
		s.Warning = ""
		s.Token++
		s.Loading = true
		s.Error = ""
		return s, []Effect{FetchCurrentEffect{Token: s.Token}}

	case LoadHistorical:
		// A newer historical selection supersedes whatever is in flight.
		if act.Timestamp == "" {
			return s, nil
		}
		s.Warning = ""
		s.Token++
		s.Loading = true
		s.Error = ""
		return s, []Effect{FetchHistoricalEffect{Token: s.Token, Timestamp: act.Timestamp}}

	case SnapshotReceived:
		s.Rows = act.Snapshot.Data
		if s.Rows == nil {
			s.Rows = []types.PriceRow{}
		}
		s.SnapshotTimestamp = act.Snapshot.Timestamp
		s.Error = ""
		return s, nil

	case TimestampsReceived:
		s.Timestamps = append([]string{}, act.Index.Timestamps...)
		return s, nil

	case FetchFailed:
		s.Error = act.Message
		return s, nil

	case FetchFinished:
		if act.Token != 0 && act.Token == s.Token {
			s.Loading = false
		}
		return s, nil

	case GroupsLoaded:
		s.Groups = act.Groups
		return revalidateSelection(s), nil

	case AddGroup:
		s.Warning = ""
		next, changed := s.Groups.AddGroup(act.Name)
		if !changed {
			return s, nil
		}
		s.Groups = next
		return s, []Effect{SaveGroupsEffect{Op: "add_group", Groups: next}}

	case DeleteGroup:
		s.Warning = ""
		next, changed := s.Groups.DeleteGroup(act.Name)
		if !changed {
			return s, nil
		}
		s.Groups = next
		return revalidateSelection(s), []Effect{SaveGroupsEffect{Op: "delete_group", Groups: next}}

	case AddProduct:
		s.Warning = ""
		next, changed := s.Groups.AddProduct(act.ID, act.Group)
		if !changed {
			return s, nil
		}
		s.Groups = next
		return s, []Effect{SaveGroupsEffect{Op: "add_product", Groups: next}}

	case RemoveProduct:
		s.Warning = ""
		next, changed := s.Groups.RemoveProduct(act.ID, act.Group)
		if !changed {
			return s, nil
		}
		s.Groups = next
		return s, []Effect{SaveGroupsEffect{Op: "remove_product", Groups: next}}

	case SelectGroup:
		s.Warning = ""
		name := strings.TrimSpace(act.Name)
		if name != groups.AllProducts && !s.Groups.Has(name) {
			return warn(s, fmt.Sprintf("unknown group %q", act.Name))
		}
		s.SelectedGroup = name
		return revalidateSelection(s), nil

	case SetViewMode:
		s.Warning = ""
		mode, err := viewmode.Transition(s.Mode, act.Mode, s.Groups.IsConcrete(s.SelectedGroup))
		if err != nil {
			return warn(s, err.Error())
		}
		s.Mode = mode
		return s, nil

	case SetFilter:
		s.Warning = ""
		switch act.Name {
		case FilterShowOnlyChanges:
			s.Filters.ShowOnlyChanges = act.Value
		case FilterHideDesignatedPharmacy:
			s.Filters.HideDesignatedPharmacy = act.Value
		default:
			return warn(s, fmt.Sprintf("unknown filter %q", act.Name))
		}
		return s, nil

	case DismissMessages:
		s.Error = ""
		s.Warning = ""
		return s, nil
	}

	return s, nil
}

func warn(s State, msg string) (State, []Effect) {
	s.Warning = msg
	return s, []Effect{WarnEffect{Message: msg}}
}

// revalidateSelection falls back to all products when the selected group is
// gone and leaves group-only mode with it.
func revalidateSelection(s State) State {
	if s.SelectedGroup != groups.AllProducts && !s.Groups.Has(s.SelectedGroup) {
		s.SelectedGroup = groups.AllProducts
	}
	s.Mode = viewmode.Revalidate(s.Mode, s.Groups.IsConcrete(s.SelectedGroup))
	return s
}
