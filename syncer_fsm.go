package lyricsync

import "fmt"

// syncerState represents a small finite state machine. It has the following transitions:
// uninitialized → running-master
// uninitialized → running-slave
// running-master → closed
// running-slave  → closed
//
// A Syncer never moves between roles, and closed is terminal.
type syncerState string

const (
	// uninitialized is the state of a Syncer whose transport is not open yet.
	syncerStateUninitialized syncerState = "uninitialized"
	// running-master polls the player and publishes changed lyrics.
	syncerStateRunningMaster syncerState = "running-master"
	// running-slave polls the mailbox and surfaces changed lyrics.
	syncerStateRunningSlave syncerState = "running-slave"
	// closed is the state after Close.
	syncerStateClosed syncerState = "closed"
)

var validTransitions = map[syncerState][]syncerState{
	syncerStateUninitialized: {
		syncerStateRunningMaster,
		syncerStateRunningSlave,
	},
	syncerStateRunningMaster: {
		syncerStateClosed,
	},
	syncerStateRunningSlave: {
		syncerStateClosed,
	},
	syncerStateClosed: {},
}

func runningState(role Role) syncerState {
	if role == RoleMaster {
		return syncerStateRunningMaster
	}
	return syncerStateRunningSlave
}

func (s *syncerState) canTransitionTo(state syncerState) error {
	for _, target := range validTransitions[*s] {
		if target == state {
			return nil
		}
	}
	return fmt.Errorf("unable to transition from %s to %s", *s, state)
}

func (s *syncerState) transitionTo(state syncerState) error {
	if err := s.canTransitionTo(state); err != nil {
		return err
	}
	*s = state
	return nil
}
