package lyricsync

import "testing"

func TestSyncerStateTransitions(t *testing.T) {
	for _, tc := range []struct {
		from, to syncerState
		ok       bool
	}{
		{syncerStateUninitialized, syncerStateRunningMaster, true},
		{syncerStateUninitialized, syncerStateRunningSlave, true},
		{syncerStateUninitialized, syncerStateClosed, false},
		{syncerStateRunningMaster, syncerStateClosed, true},
		{syncerStateRunningSlave, syncerStateClosed, true},
		{syncerStateRunningMaster, syncerStateRunningSlave, false},
		{syncerStateRunningSlave, syncerStateRunningMaster, false},
		{syncerStateClosed, syncerStateRunningMaster, false},
		{syncerStateClosed, syncerStateClosed, false},
	} {
		state := tc.from
		err := state.transitionTo(tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("%s -> %s: expected error", tc.from, tc.to)
			}
			if state != tc.from {
				t.Errorf("%s -> %s: state changed to %s on failed transition", tc.from, tc.to, state)
			}
		}
	}
}
