// Copyright 2025 ROS 2 MedKit Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sovd

import (
	"errors"
	"fmt"
	"time"
)

// GatewayError is returned when the gateway responds with a non-2xx
// status, or when the request never produced a response at all (in which
// case Unreachable is true and Status is 0).
type GatewayError struct {
	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	// Body is the raw response body, truncated for readability.
	Body string

	// Unreachable indicates a transport-level failure (connection
	// refused, DNS, timeout) rather than an HTTP error response.
	Unreachable bool

	// Err is the underlying transport error, if any.
	Err error
}

func (e *GatewayError) Error() string {
	if e.Unreachable {
		return fmt.Sprintf("sovd gateway unreachable: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("sovd gateway returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("sovd gateway returned %d", e.Status)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NotFound reports whether the gateway answered 404 for the request.
func (e *GatewayError) NotFound() bool { return e.Status == 404 }

// ValidationError reports a client-side argument rejection. No network
// call is made when one of these is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// TimeoutError is returned by RunOperation when an execution does not
// reach a terminal status within the allotted wait.
type TimeoutError struct {
	// LastStatus is the most recent status observed before giving up.
	LastStatus string

	// Waited is how long the poller waited in total.
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation execution did not finish within %s (last status %q)", e.Waited, e.LastStatus)
}

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.NotFound()
}

// IsUnreachable reports whether err represents a transport failure where
// the gateway never answered.
func IsUnreachable(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Unreachable
}
