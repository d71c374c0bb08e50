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

import "time"

// GatewayEvent is the immutable record of one webhook notification delivered
// by the payment gateway. LinkID is the external id of the affected resource
// (mandate, payment or instalment schedule).
type GatewayEvent struct {
	GatewayEventID    string    `json:"event_id"`
	ResourceType      string    `json:"resource_type"`
	Action            string    `json:"action"`
	LinkID            string    `json:"link_id"`
	Cause             string    `json:"cause"`
	Description       string    `json:"description"`
	ExternalCreatedAt time.Time `json:"external_created_at"`
}

// Event is an Executable wrapping one gateway notification. The wrapped
// GatewayEvent never changes after creation; only the Executable status moves.
type Event struct {
	Executable
	EventID string       `json:"id"`
	Gateway GatewayEvent `json:"gateway_event"`
}
