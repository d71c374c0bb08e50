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

package database

import (
	"context"

	"github.com/doozez/doozez/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	user          // Interface for user-related operations
	safe          // Interface for safe-related operations
	invitation    // Interface for invitation-related operations
	participation // Interface for participation-related operations
	paymentMethod // Interface for payment-method-related operations
	mandate       // Interface for mandate-related operations
	payment       // Interface for payment-related operations
	instalment    // Interface for instalment-related operations
	job           // Interface for job and task operations
	event         // Interface for event-related operations
}

// user defines methods for handling users.
type user interface {
	CreateUser(usr model.User) (model.User, error)    // Creates a new user
	GetUserByID(id string) (*model.User, error)       // Retrieves a user by ID
	GetUserByEmail(email string) (*model.User, error) // Retrieves a user by email
}

// safe defines methods for handling safes.
type safe interface {
	CreateSafe(sf model.Safe) (model.Safe, error)                                  // Creates a new safe
	GetSafeByID(ctx context.Context, id string) (*model.Safe, error)               // Retrieves a safe by ID
	UpdateSafe(ctx context.Context, sf *model.Safe) error                          // Persists safe status/job changes
	CountPendingPaymentsForSafe(ctx context.Context, id string) (int64, error)     // Payments still PendingSubmission or Submitted
	CountInactiveInstalmentsForSafe(ctx context.Context, id string) (int64, error) // Instalments not yet Active
}

// invitation defines methods for handling invitations.
type invitation interface {
	CreateInvitation(inv model.Invitation) (model.Invitation, error)                        // Creates a new invitation
	GetInvitationByID(id string) (*model.Invitation, error)                                 // Retrieves an invitation by ID
	GetPendingInvitationForRecipient(safeID, recipientID string) (*model.Invitation, error) // Non-terminal invitation for (recipient, safe), nil if none
	GetPendingInvitationsForSafe(safeID string) ([]model.Invitation, error)                 // All pending invitations on a safe
	UpdateInvitationStatus(id string, status model.InvitationStatus) error                  // Persists an invitation transition
}

// participation defines methods for handling participations.
type participation interface {
	CreateParticipation(p model.Participation) (model.Participation, error)                           // Creates a new participation
	GetParticipationByID(id string) (*model.Participation, error)                                     // Retrieves a participation with its payment method
	GetActiveParticipationsForSafe(ctx context.Context, safeID string) ([]model.Participation, error) // Active (non-Left) participations in join order
	GetSystemParticipation(ctx context.Context, safeID string) (*model.Participation, error)          // The house participation, nil if absent
	GetNonSystemParticipations(ctx context.Context, safeID string) ([]model.Participation, error)     // Active participations excluding the house
	UpdateParticipationStatus(id string, status model.ParticipationStatus) error                      // Persists a participation transition
	AssignWinSequences(ctx context.Context, assignments []WinAssignment) error                        // Persists a full draw result atomically
}

// paymentMethod defines methods for handling payment methods.
type paymentMethod interface {
	CreatePaymentMethod(pm model.PaymentMethod) (model.PaymentMethod, error)             // Creates a method, enforcing the single-default invariant
	GetPaymentMethodByID(id string) (*model.PaymentMethod, error)                        // Retrieves a method with its mandate
	GetDefaultPaymentMethodForUser(userID string) (*model.PaymentMethod, error)          // The user's default method, nil if none
	GetPaymentMethodByMandateExternalID(externalID string) (*model.PaymentMethod, error) // Resolves a gateway mandate id to the local method
	UpdatePaymentMethodStatus(id string, status model.PaymentMethodStatus) error         // Persists a chain advancement
}

// mandate defines methods for handling mandates.
type mandate interface {
	CreateMandate(m model.Mandate) (model.Mandate, error)             // Creates a new mandate
	GetMandateByID(id string) (*model.Mandate, error)                 // Retrieves a mandate by ID
	GetMandateByExternalID(externalID string) (*model.Mandate, error) // Resolves a gateway mandate id
	UpdateMandate(m *model.Mandate) error                             // Persists mandate status/external-id changes
}

// payment defines methods for handling payments.
type payment interface {
	CreatePayment(p model.Payment) (model.Payment, error)             // Creates a new payment
	GetPaymentByExternalID(externalID string) (*model.Payment, error) // Resolves a gateway payment id
	UpdatePaymentStatus(id string, status model.PaymentStatus) error  // Persists a payment transition
}

// instalment defines methods for handling instalments.
type instalment interface {
	CreateInstalment(i model.Instalment) (model.Instalment, error)          // Creates a new instalment
	GetInstalmentByExternalID(externalID string) (*model.Instalment, error) // Resolves a gateway schedule id
	UpdateInstalmentStatus(id string, status model.InstalmentStatus) error  // Persists an instalment transition
}

// job defines methods for handling jobs and their tasks.
type job interface {
	CreateJob(j model.Job) (model.Job, error)                                   // Creates a new job
	GetJobByID(id string) (*model.Job, error)                                   // Retrieves a job with its tasks
	ClaimNextJob(ctx context.Context) (*model.Job, error)                       // Claims the next runnable job under a row lock, nil when idle
	UpdateJobStatus(id string, status model.ExecutableStatus) error             // Persists a job transition
	CreateTask(t model.Task) (model.Task, error)                                // Creates a new task
	ClaimNextTaskForJob(ctx context.Context, jobID string) (*model.Task, error) // Claims the next pending task under a row lock, nil when none
	GetTasksForJob(jobID string) ([]model.Task, error)                          // Tasks for a job in execution order
	UpdateTaskStatus(id string, status model.TaskStatus) error                  // Persists a task transition
	RecordTaskFailure(id string, taskErr *model.TaskError) error                // Persists the Failed status plus the captured error
}

// event defines methods for handling gateway events.
type event interface {
	CreateEvent(ev model.Event) (model.Event, error)                  // Persists a gateway notification, idempotent on the gateway event id
	GetEventByID(id string) (*model.Event, error)                     // Retrieves an event by ID
	ClaimNextEvent(ctx context.Context) (*model.Event, error)         // Claims the next runnable event under a row lock, nil when idle
	UpdateEventStatus(id string, status model.ExecutableStatus) error // Persists an event transition
}

// WinAssignment is one row of a committed draw result.
type WinAssignment struct {
	ParticipationID string
	WinSequence     int
}
