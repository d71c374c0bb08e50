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
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/doozez/doozez/database/mocks"
	"github.com/doozez/doozez/model"
)

// newTestService builds a service over mocked storage and gateway. The queue
// is left nil; enqueue calls are skipped in tests.
func newTestService(t *testing.T) (*Doozez, *mocks.MockDataSource, *MockGateway) {
	t.Helper()
	ds := new(mocks.MockDataSource)
	gw := new(MockGateway)
	d := &Doozez{datasource: ds, gateway: gw}
	d.registry = d.defaultTaskRegistry()
	d.events = d.defaultEventDispatch()
	return d, ds, gw
}

// newTestServiceWithRedis additionally wires a miniredis instance for paths
// that take the poke lock.
func newTestServiceWithRedis(t *testing.T) (*Doozez, *mocks.MockDataSource, *MockGateway) {
	t.Helper()
	d, ds, gw := newTestService(t)
	mr := miniredis.RunT(t)
	d.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return d, ds, gw
}

func activatedPaymentMethod(id string) *model.PaymentMethod {
	return &model.PaymentMethod{
		PaymentMethodID: id,
		Status:          model.PaymentMethodExternallyActivated,
		MandateID:       "mdt_" + id,
		Mandate: &model.Mandate{
			MandateID:  "mdt_" + id,
			Status:     model.MandateActive,
			ExternalID: "MD_" + id,
		},
	}
}
