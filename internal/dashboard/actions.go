package dashboard

import (
	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/types"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// Action is an input to Reduce.
type Action interface {
	action()
}

// User actions.
type (
	FetchCurrent   struct{}
	LoadHistorical struct{ Timestamp string }
	AddGroup       struct{ Name string }
	DeleteGroup    struct{ Name string }
	AddProduct     struct{ ID, Group string }
	RemoveProduct  struct{ ID, Group string }
	SelectGroup    struct{ Name string }
	SetViewMode    struct{ Mode viewmode.Mode }
	SetFilter      struct {
		Name  string
		Value bool
	}
	DismissMessages struct{}
)

// Completion actions dispatched by the runtime. A zero Token is not tied to
// any fetch and is never stale.
type (
	SnapshotReceived struct {
		Token    uint64
		Snapshot types.Snapshot
	}
	TimestampsReceived struct {
		Token uint64
		Index types.TimestampIndex
	}
	FetchFailed struct {
		Token   uint64
		Message string
	}
	FetchFinished struct{ Token uint64 }
	GroupsLoaded  struct{ Groups groups.Collection }
)

func (FetchCurrent) action()       {}
func (LoadHistorical) action()     {}
func (AddGroup) action()           {}
func (DeleteGroup) action()        {}
func (AddProduct) action()         {}
func (RemoveProduct) action()      {}
func (SelectGroup) action()        {}
func (SetViewMode) action()        {}
func (SetFilter) action()          {}
func (DismissMessages) action()    {}
func (SnapshotReceived) action()   {}
func (TimestampsReceived) action() {}
func (FetchFailed) action()        {}
func (FetchFinished) action()      {}
func (GroupsLoaded) action()       {}

// Effect is work Reduce asks the runtime to perform.
type Effect interface {
	effect()
}

type (
	FetchCurrentEffect    struct{ Token uint64 }
	FetchHistoricalEffect struct {
		Token     uint64
		Timestamp string
	}
	// SaveGroupsEffect persists Groups. Op names the mutation that caused it.
	SaveGroupsEffect struct {
		Op     string
		Groups groups.Collection
	}
	WarnEffect struct{ Message string }
)

func (FetchCurrentEffect) effect()    {}
func (FetchHistoricalEffect) effect() {}
func (SaveGroupsEffect) effect()      {}
func (WarnEffect) effect()            {}

// Stale reports whether a completion action belongs to a superseded fetch.
func Stale(s State, a Action) bool {
	var token uint64
	switch act := a.(type) {
	case SnapshotReceived:
		token = act.Token
	case TimestampsReceived:
		token = act.Token
	case FetchFailed:
		token = act.Token
	default:
		return false
	}
	return token != 0 && token != s.Token
}
