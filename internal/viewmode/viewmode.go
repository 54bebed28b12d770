// Package viewmode gates the exclusive "watch" view behind a group selection.
package viewmode

import (
	"errors"
	"fmt"
)

// Mode is the table view mode.
type Mode string

const (
	// All shows every row of the snapshot.
	All Mode = "all"
	// GroupOnly shows only members of the selected group.
	GroupOnly Mode = "groupOnly"
)

// ErrNoGroupSelected rejects entering GroupOnly without a concrete group.
var ErrNoGroupSelected = errors.New("select a group before switching to group-only view")

// Parse validates a mode name.
func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case All, GroupOnly:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown view mode %q (use %q or %q)", s, All, GroupOnly)
	}
}

// Transition moves from current to target. Entering GroupOnly requires
// hasConcreteGroup; a rejected transition returns current unchanged.
func Transition(current, target Mode, hasConcreteGroup bool) (Mode, error) {
	switch target {
	case All:
		return All, nil
	case GroupOnly:
		if !hasConcreteGroup {
			return current, ErrNoGroupSelected
		}
		return GroupOnly, nil
	default:
		return current, fmt.Errorf("unknown view mode %q", target)
	}
}

// Revalidate reverts GroupOnly to All once the selected group is no longer
// a concrete group.
func Revalidate(current Mode, hasConcreteGroup bool) Mode {
	if current == GroupOnly && !hasConcreteGroup {
		return All
	}
	return current
}
