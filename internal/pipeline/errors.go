// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"errors"
	"fmt"
)

var ErrAlreadyStarted = errors.New("pipeline already started")

type Stage string

const (
	StageProducer Stage = "producer"
	StageConsumer Stage = "consumer"
)

// Error carries a failure from one side of the queue to the caller.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
