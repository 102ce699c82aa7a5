// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metabase

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteCallFailed = errors.New("metabase call failed")
	ErrUnknownMethod    = errors.New("unknown http method")
)

// RemoteError is returned for every non-2xx response.
type RemoteError struct {
	Method     Method
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Is makes every RemoteError match ErrRemoteCallFailed.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

// IsConflict reports whether err is a RemoteError carrying 409, the status used
// for stale permission graph revisions.
func IsConflict(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.StatusCode == 409
}
