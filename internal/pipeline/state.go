// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import "fmt"

// State tracks a single run: Idle, Running, Draining once the producer is
// exhausted, then Done or Failed. There is no way back from a terminal state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
