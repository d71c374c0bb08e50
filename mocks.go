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

	"github.com/stretchr/testify/mock"

	"github.com/doozez/doozez/gateway"
)

// MockGateway is a mock implementation of the gateway.Client interface used
// by the service-layer tests.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateApprovalFlow(ctx context.Context, req gateway.ApprovalFlowRequest) (*gateway.ApprovalFlow, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ApprovalFlow), args.Error(1)
}

func (m *MockGateway) CompleteApprovalFlow(ctx context.Context, flowID, sessionToken string) (*gateway.ApprovalFlow, error) {
	args := m.Called(ctx, flowID, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ApprovalFlow), args.Error(1)
}

func (m *MockGateway) GetMandate(ctx context.Context, mandateID string) (*gateway.Mandate, error) {
	args := m.Called(ctx, mandateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Mandate), args.Error(1)
}

func (m *MockGateway) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

func (m *MockGateway) GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

func (m *MockGateway) CreateInstalmentSchedule(ctx context.Context, req gateway.InstalmentScheduleRequest) (*gateway.InstalmentSchedule, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InstalmentSchedule), args.Error(1)
}

func (m *MockGateway) GetInstalmentSchedule(ctx context.Context, scheduleID string) (*gateway.InstalmentSchedule, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InstalmentSchedule), args.Error(1)
}
