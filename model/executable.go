/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"fmt"
	"time"
)

// ExecutableStatus is the shared lifecycle of jobs and events. Transitions
// are monotonic: Created -> Running -> Successful | Failed.
type ExecutableStatus string

const (
	ExecutableCreated    ExecutableStatus = "CREATED"
	ExecutableRunning    ExecutableStatus = "RUNNING"
	ExecutableSuccessful ExecutableStatus = "SUCCESSFUL"
	ExecutableFailed     ExecutableStatus = "FAILED"
)

// TransitionError reports an illegal state-machine transition. It is always a
// programming or ordering bug, never a business outcome, and is surfaced as a
// 5xx-equivalent.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// Executable is the abstract lifecycle embedded by Job and Event.
type Executable struct {
	Status    ExecutableStatus `json:"status"`
	CreatedOn time.Time        `json:"created_on"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// StartRunning moves the executable from Created to Running.
func (e *Executable) StartRunning() error {
	if e.Status != ExecutableCreated {
		return TransitionError{Entity: "executable", From: string(e.Status), To: string(ExecutableRunning)}
	}
	e.Status = ExecutableRunning
	e.UpdatedAt = time.Now()
	return nil
}

// FinishSuccessfully moves the executable from Running to Successful.
func (e *Executable) FinishSuccessfully() error {
	if e.Status != ExecutableRunning {
		return TransitionError{Entity: "executable", From: string(e.Status), To: string(ExecutableSuccessful)}
	}
	e.Status = ExecutableSuccessful
	e.UpdatedAt = time.Now()
	return nil
}

// FinishWithFailure moves the executable from Running to Failed.
func (e *Executable) FinishWithFailure() error {
	if e.Status != ExecutableRunning {
		return TransitionError{Entity: "executable", From: string(e.Status), To: string(ExecutableFailed)}
	}
	e.Status = ExecutableFailed
	e.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the executable reached a final state.
func (e *Executable) IsTerminal() bool {
	return e.Status == ExecutableSuccessful || e.Status == ExecutableFailed
}
