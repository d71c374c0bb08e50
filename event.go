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

	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/model"
)

// EventHandler reconciles one gateway notification against local state.
type EventHandler func(ctx context.Context, gcEvent model.GatewayEvent) error

type eventKey struct {
	ResourceType string
	Action       string
}

// EventDispatch routes a gateway event to its reconciliation handler by
// (resource_type, action). Built once at startup; unknown pairs are ignored,
// not failed, since the gateway sends more event types than doozez tracks.
type EventDispatch struct {
	handlers map[eventKey]EventHandler
}

func NewEventDispatch() *EventDispatch {
	return &EventDispatch{handlers: make(map[eventKey]EventHandler)}
}

// Register binds a handler to a (resource_type, action) pair.
func (e *EventDispatch) Register(resourceType, action string, handler EventHandler) {
	e.handlers[eventKey{ResourceType: resourceType, Action: action}] = handler
}

// Resolve returns the handler for the pair, or nil when none is registered.
func (e *EventDispatch) Resolve(resourceType, action string) EventHandler {
	return e.handlers[eventKey{ResourceType: resourceType, Action: action}]
}

func (d *Doozez) defaultEventDispatch() *EventDispatch {
	dispatch := NewEventDispatch()
	dispatch.Register("mandates", "created", d.mandateCreated)
	dispatch.Register("mandates", "submitted", d.mandateSubmitted)
	dispatch.Register("mandates", "active", d.mandateActive)
	dispatch.Register("mandates", "failed", d.mandateTerminated(model.MandateFailed))
	dispatch.Register("mandates", "cancelled", d.mandateTerminated(model.MandateCancelled))
	dispatch.Register("mandates", "expired", d.mandateTerminated(model.MandateExpired))
	dispatch.Register("payments", "confirmed", d.paymentConfirmed)
	dispatch.Register("payments", "failed", d.paymentFailed(model.PaymentFailed))
	dispatch.Register("payments", "cancelled", d.paymentFailed(model.PaymentCancelled))
	dispatch.Register("instalment_schedules", "created", d.instalmentCreated)
	return dispatch
}

// CreateEvent persists a gateway notification and enqueues an event-executor
// tick. Redelivered webhooks collapse onto the stored event, so replays never
// process twice.
func (d *Doozez) CreateEvent(ctx context.Context, gcEvent model.GatewayEvent) (model.Event, error) {
	event, err := d.datasource.CreateEvent(model.Event{Gateway: gcEvent})
	if err != nil {
		return model.Event{}, err
	}
	if d.queue != nil {
		if err := d.queue.queueEventExecutorTick(); err != nil {
			logrus.WithError(err).Warn("failed to enqueue event executor tick")
		}
	}
	return event, nil
}

// GetEvent retrieves an event by id.
func (d *Doozez) GetEvent(id string) (*model.Event, error) {
	return d.datasource.GetEventByID(id)
}

// ExecuteNextRunnableEvent is the event executor's poll tick. It claims the
// next runnable event and dispatches it by (resource_type, action). A handler
// failure finalizes the event Failed and is swallowed; the poller keeps
// ticking. Events with no registered handler finalize Successful with a log
// line. Returns the finalized event, or nil when there was nothing to run.
func (d *Doozez) ExecuteNextRunnableEvent(ctx context.Context) (*model.Event, error) {
	event, err := d.datasource.ClaimNextEvent(ctx)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}

	log := logrus.WithFields(logrus.Fields{
		"event_id":      event.EventID,
		"resource_type": event.Gateway.ResourceType,
		"action":        event.Gateway.Action,
		"link_id":       event.Gateway.LinkID,
	})

	handler := d.events.Resolve(event.Gateway.ResourceType, event.Gateway.Action)
	if handler == nil {
		log.Info("no reconciliation handler for event, ignoring")
		return d.finalizeEvent(event, nil)
	}

	if handlerErr := handler(ctx, event.Gateway); handlerErr != nil {
		log.WithError(handlerErr).Warn("event reconciliation failed")
		return d.finalizeEvent(event, handlerErr)
	}
	log.Info("event reconciled")
	return d.finalizeEvent(event, nil)
}

func (d *Doozez) finalizeEvent(event *model.Event, handlerErr error) (*model.Event, error) {
	var err error
	if handlerErr != nil {
		err = event.FinishWithFailure()
	} else {
		err = event.FinishSuccessfully()
	}
	if err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateEventStatus(event.EventID, event.Status); err != nil {
		return nil, err
	}
	return event, nil
}
