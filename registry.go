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

package doozez

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doozez/doozez/model"
)

// TaskHandler executes one task type. Parameters arrive as the raw JSON
// payload the planner stored on the task.
type TaskHandler func(ctx context.Context, parameters json.RawMessage) error

// UnknownTaskTypeError reports a task whose type has no registered handler.
// It means a planner and the registry went out of sync, which is fatal for
// the owning job.
type UnknownTaskTypeError struct {
	TaskType model.TaskType
}

func (e UnknownTaskTypeError) Error() string {
	return fmt.Sprintf("no handler registered for task type %s", e.TaskType)
}

// TaskRegistry maps task types to handlers. It is built once at startup and
// injected into the job executor; tests construct isolated registries.
type TaskRegistry struct {
	handlers map[model.TaskType]TaskHandler
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{handlers: make(map[model.TaskType]TaskHandler)}
}

// Register binds a handler to a task type, replacing any previous binding.
func (r *TaskRegistry) Register(taskType model.TaskType, handler TaskHandler) {
	r.handlers[taskType] = handler
}

// Run invokes the handler registered for the task type.
func (r *TaskRegistry) Run(ctx context.Context, taskType model.TaskType, parameters json.RawMessage) error {
	handler, ok := r.handlers[taskType]
	if !ok {
		return UnknownTaskTypeError{TaskType: taskType}
	}
	return handler(ctx, parameters)
}

// defaultTaskRegistry binds the business task implementations.
func (d *Doozez) defaultTaskRegistry() *TaskRegistry {
	registry := NewTaskRegistry()
	registry.Register(model.TaskTypeDraw, d.drawTask)
	registry.Register(model.TaskTypeCreatePayment, d.createPaymentTask)
	registry.Register(model.TaskTypeCreateInstalments, d.createInstalmentsTask)
	registry.Register(model.TaskTypeCompleteSafeStart, d.completeSafeStartTask)
	return registry
}
