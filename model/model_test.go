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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutableLifecycle(t *testing.T) {
	e := &Executable{Status: ExecutableCreated}

	require.NoError(t, e.StartRunning())
	assert.Equal(t, ExecutableRunning, e.Status)

	require.NoError(t, e.FinishSuccessfully())
	assert.Equal(t, ExecutableSuccessful, e.Status)
	assert.True(t, e.IsTerminal())
}

func TestExecutableIllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "start from running",
			run: func() error {
				e := &Executable{Status: ExecutableRunning}
				return e.StartRunning()
			},
		},
		{
			name: "finish from created",
			run: func() error {
				e := &Executable{Status: ExecutableCreated}
				return e.FinishSuccessfully()
			},
		},
		{
			name: "fail from successful",
			run: func() error {
				e := &Executable{Status: ExecutableSuccessful}
				return e.FinishWithFailure()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.IsType(t, TransitionError{}, err)
		})
	}
}

func TestTaskFailureCapturesError(t *testing.T) {
	task := &Task{Status: TaskPending, TaskType: TaskTypeCreatePayment}
	require.NoError(t, task.Start())

	cause := errors.Wrap(errors.New("mandate not active"), "create payment")
	require.NoError(t, task.FinishWithFailure(cause))

	assert.Equal(t, TaskFailed, task.Status)
	require.NotNil(t, task.Errors)
	assert.Contains(t, task.Errors.Message, "mandate not active")
	assert.NotEmpty(t, task.Errors.Type)
	// pkg/errors wrapping keeps the stack in the %+v rendering.
	assert.Contains(t, task.Errors.Traceback, "create payment")
}

func TestTaskCannotFinishBeforeStart(t *testing.T) {
	task := &Task{Status: TaskPending}
	assert.Error(t, task.FinishSuccessfully())
	assert.Error(t, task.FinishWithFailure(errors.New("boom")))
}

func TestInvitationTransitions(t *testing.T) {
	inv := &Invitation{Status: InvitationPending}
	require.NoError(t, inv.Decline())
	assert.Equal(t, InvitationDeclined, inv.Status)

	// all transitions out of a terminal status fail
	assert.Error(t, inv.Accept())
	assert.Error(t, inv.RemoveBySender())
}

func TestMandateTransitions(t *testing.T) {
	m := &Mandate{Status: MandatePendingSubmission}
	require.NoError(t, m.Submit())
	require.NoError(t, m.Activate())
	assert.Equal(t, MandateActive, m.Status)

	// submit only from PendingSubmission, activate only from Submitted
	assert.Error(t, (&Mandate{Status: MandatePendingCustomerApproval}).Submit())
	assert.Error(t, (&Mandate{Status: MandatePendingSubmission}).Activate())

	failed := &Mandate{Status: MandateSubmitted}
	require.NoError(t, failed.Terminate(MandateFailed))
	assert.Error(t, failed.Terminate(MandateCancelled))
}

func TestPaymentMethodChainIsForwardOnly(t *testing.T) {
	pm := &PaymentMethod{Status: PaymentMethodPendingExternalApproval}
	require.NoError(t, pm.Advance(PaymentMethodExternalApprovalSuccessful))
	require.NoError(t, pm.Advance(PaymentMethodExternallySubmitted))
	require.NoError(t, pm.Advance(PaymentMethodExternallyActivated))
	assert.True(t, pm.IsActive())

	// no going back
	assert.Error(t, pm.Advance(PaymentMethodExternallyCreated))
	// approval failure only from the approval step
	assert.Error(t, pm.Advance(PaymentMethodExternalApprovalFailed))

	denied := &PaymentMethod{Status: PaymentMethodPendingExternalApproval}
	require.NoError(t, denied.Advance(PaymentMethodExternalApprovalFailed))
	assert.Error(t, denied.Advance(PaymentMethodExternallyActivated))
}

func TestPaymentTransitions(t *testing.T) {
	p := &Payment{Status: PaymentPendingSubmission}
	require.NoError(t, p.Submit())
	require.NoError(t, p.Confirm())
	assert.Equal(t, PaymentConfirmed, p.Status)

	// confirmation may overtake submission
	quick := &Payment{Status: PaymentPendingSubmission}
	require.NoError(t, quick.Confirm())

	// chargeback only after confirmation
	assert.Error(t, (&Payment{Status: PaymentSubmitted}).MarkFailed(PaymentChargedBack))
	require.NoError(t, p.MarkFailed(PaymentChargedBack))

	// terminal payments cannot fail again
	done := &Payment{Status: PaymentCancelled}
	assert.Error(t, done.MarkFailed(PaymentFailed))
}

func TestInstalmentTransitions(t *testing.T) {
	i := &Instalment{Status: InstalmentPending}
	require.NoError(t, i.Activate())
	assert.Error(t, i.Activate())

	f := &Instalment{Status: InstalmentPending}
	require.NoError(t, f.MarkCreationFailed())
	assert.Error(t, f.Activate())
}

func TestSafeTransitions(t *testing.T) {
	s := &Safe{Status: SafePendingParticipants}
	require.NoError(t, s.BeginStarting("job_1"))
	assert.Equal(t, SafeStarting, s.Status)
	assert.Equal(t, "job_1", s.JobID)

	require.NoError(t, s.MarkStarted())
	assert.Equal(t, SafeStarted, s.Status)

	// poke outside the startup window is illegal
	assert.Error(t, s.MarkStarted())
	assert.Error(t, s.BeginStarting("job_2"))
}
