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
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// User methods

func (m *MockDataSource) CreateUser(usr model.User) (model.User, error) {
	args := m.Called(usr)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockDataSource) GetUserByID(id string) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockDataSource) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Safe methods

func (m *MockDataSource) CreateSafe(sf model.Safe) (model.Safe, error) {
	args := m.Called(sf)
	return args.Get(0).(model.Safe), args.Error(1)
}

func (m *MockDataSource) GetSafeByID(ctx context.Context, id string) (*model.Safe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Safe), args.Error(1)
}

func (m *MockDataSource) UpdateSafe(ctx context.Context, sf *model.Safe) error {
	args := m.Called(ctx, sf)
	return args.Error(0)
}

func (m *MockDataSource) CountPendingPaymentsForSafe(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) CountInactiveInstalmentsForSafe(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// Invitation methods

func (m *MockDataSource) CreateInvitation(inv model.Invitation) (model.Invitation, error) {
	args := m.Called(inv)
	return args.Get(0).(model.Invitation), args.Error(1)
}

func (m *MockDataSource) GetInvitationByID(id string) (*model.Invitation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockDataSource) GetPendingInvitationForRecipient(safeID, recipientID string) (*model.Invitation, error) {
	args := m.Called(safeID, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockDataSource) GetPendingInvitationsForSafe(safeID string) ([]model.Invitation, error) {
	args := m.Called(safeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *MockDataSource) UpdateInvitationStatus(id string, status model.InvitationStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// Participation methods

func (m *MockDataSource) CreateParticipation(p model.Participation) (model.Participation, error) {
	args := m.Called(p)
	return args.Get(0).(model.Participation), args.Error(1)
}

func (m *MockDataSource) GetParticipationByID(id string) (*model.Participation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participation), args.Error(1)
}

func (m *MockDataSource) GetActiveParticipationsForSafe(ctx context.Context, safeID string) ([]model.Participation, error) {
	args := m.Called(ctx, safeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Participation), args.Error(1)
}

func (m *MockDataSource) GetSystemParticipation(ctx context.Context, safeID string) (*model.Participation, error) {
	args := m.Called(ctx, safeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Participation), args.Error(1)
}

func (m *MockDataSource) GetNonSystemParticipations(ctx context.Context, safeID string) ([]model.Participation, error) {
	args := m.Called(ctx, safeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Participation), args.Error(1)
}

func (m *MockDataSource) UpdateParticipationStatus(id string, status model.ParticipationStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockDataSource) AssignWinSequences(ctx context.Context, assignments []database.WinAssignment) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

// PaymentMethod methods

func (m *MockDataSource) CreatePaymentMethod(pm model.PaymentMethod) (model.PaymentMethod, error) {
	args := m.Called(pm)
	return args.Get(0).(model.PaymentMethod), args.Error(1)
}

func (m *MockDataSource) GetPaymentMethodByID(id string) (*model.PaymentMethod, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockDataSource) GetDefaultPaymentMethodForUser(userID string) (*model.PaymentMethod, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockDataSource) GetPaymentMethodByMandateExternalID(externalID string) (*model.PaymentMethod, error) {
	args := m.Called(externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentMethod), args.Error(1)
}

func (m *MockDataSource) UpdatePaymentMethodStatus(id string, status model.PaymentMethodStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// Mandate methods

func (m *MockDataSource) CreateMandate(mandate model.Mandate) (model.Mandate, error) {
	args := m.Called(mandate)
	return args.Get(0).(model.Mandate), args.Error(1)
}

func (m *MockDataSource) GetMandateByID(id string) (*model.Mandate, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mandate), args.Error(1)
}

func (m *MockDataSource) GetMandateByExternalID(externalID string) (*model.Mandate, error) {
	args := m.Called(externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Mandate), args.Error(1)
}

func (m *MockDataSource) UpdateMandate(mandate *model.Mandate) error {
	args := m.Called(mandate)
	return args.Error(0)
}

// Payment methods

func (m *MockDataSource) CreatePayment(p model.Payment) (model.Payment, error) {
	args := m.Called(p)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *MockDataSource) GetPaymentByExternalID(externalID string) (*model.Payment, error) {
	args := m.Called(externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockDataSource) UpdatePaymentStatus(id string, status model.PaymentStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// Instalment methods

func (m *MockDataSource) CreateInstalment(i model.Instalment) (model.Instalment, error) {
	args := m.Called(i)
	return args.Get(0).(model.Instalment), args.Error(1)
}

func (m *MockDataSource) GetInstalmentByExternalID(externalID string) (*model.Instalment, error) {
	args := m.Called(externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Instalment), args.Error(1)
}

func (m *MockDataSource) UpdateInstalmentStatus(id string, status model.InstalmentStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// Job and task methods

func (m *MockDataSource) CreateJob(j model.Job) (model.Job, error) {
	args := m.Called(j)
	return args.Get(0).(model.Job), args.Error(1)
}

func (m *MockDataSource) GetJobByID(id string) (*model.Job, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockDataSource) ClaimNextJob(ctx context.Context) (*model.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockDataSource) UpdateJobStatus(id string, status model.ExecutableStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockDataSource) CreateTask(t model.Task) (model.Task, error) {
	args := m.Called(t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockDataSource) ClaimNextTaskForJob(ctx context.Context, jobID string) (*model.Task, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockDataSource) GetTasksForJob(jobID string) ([]model.Task, error) {
	args := m.Called(jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockDataSource) UpdateTaskStatus(id string, status model.TaskStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockDataSource) RecordTaskFailure(id string, taskErr *model.TaskError) error {
	args := m.Called(id, taskErr)
	return args.Error(0)
}

// Event methods

func (m *MockDataSource) CreateEvent(ev model.Event) (model.Event, error) {
	args := m.Called(ev)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *MockDataSource) GetEventByID(id string) (*model.Event, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockDataSource) ClaimNextEvent(ctx context.Context) (*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockDataSource) UpdateEventStatus(id string, status model.ExecutableStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}
