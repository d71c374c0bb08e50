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
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/internal/apierror"
	redlock "github.com/doozez/doozez/internal/lock"
	"github.com/doozez/doozez/model"
)

// SystemUserEmail identifies the house account that holds the system
// participation on every safe.
const SystemUserEmail = "system@doozez.io"

type PokeType string

const (
	PokePaymentConfirmed    PokeType = "PAYMENT_CONFIRMED"
	PokeInstalmentActivated PokeType = "INSTALMENT_ACTIVATED"
)

// PokeEvent tells the safe lifecycle which external confirmation triggered a
// re-evaluation of the startup condition.
type PokeEvent struct {
	SafeID string
	Type   PokeType
}

// GetSafe retrieves a safe by id.
func (d *Doozez) GetSafe(ctx context.Context, id string) (*model.Safe, error) {
	return d.datasource.GetSafeByID(ctx, id)
}

// CreateSafe creates a safe for the initiator, who must hold an externally
// activated default payment method. The safe is born with two participations:
// the house (System) and the initiator.
func (d *Doozez) CreateSafe(ctx context.Context, initiatorID, name string, monthlyPayment decimal.Decimal, currency string) (*model.Safe, error) {
	if monthlyPayment.IsNegative() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Monthly payment cannot be negative", nil)
	}

	defaultMethod, err := d.datasource.GetDefaultPaymentMethodForUser(initiatorID)
	if err != nil {
		return nil, err
	}
	if defaultMethod == nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Initiator has no default payment method", nil)
	}
	if !defaultMethod.IsActive() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Initiator's default payment method is not activated", nil)
	}

	system, err := d.systemUser()
	if err != nil {
		return nil, err
	}

	safe, err := d.datasource.CreateSafe(model.Safe{
		Name:              name,
		MonthlyPayment:    monthlyPayment,
		Currency:          currency,
		TotalParticipants: 2,
		InitiatorID:       initiatorID,
	})
	if err != nil {
		return nil, err
	}

	systemSeq := 0
	if _, err := d.datasource.CreateParticipation(model.Participation{
		UserID:      system.UserID,
		SafeID:      safe.SafeID,
		Role:        model.RoleSystem,
		Status:      model.ParticipationActive,
		WinSequence: &systemSeq,
	}); err != nil {
		return nil, err
	}
	if _, err := d.datasource.CreateParticipation(model.Participation{
		UserID:          initiatorID,
		SafeID:          safe.SafeID,
		Role:            model.RoleInitiator,
		Status:          model.ParticipationActive,
		PaymentMethodID: defaultMethod.PaymentMethodID,
	}); err != nil {
		return nil, err
	}
	return &safe, nil
}

func (d *Doozez) systemUser() (*model.User, error) {
	usr, err := d.datasource.GetUserByEmail(SystemUserEmail)
	if err == nil {
		return usr, nil
	}
	if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrNotFound {
		created, err := d.datasource.CreateUser(model.User{Email: SystemUserEmail, FirstName: "Doozez"})
		if err != nil {
			return nil, err
		}
		return &created, nil
	}
	return nil, err
}

// StartSafe begins the startup workflow. Only the initiator may start a safe.
// Pending invitations block the start unless force is set, in which case each
// one is withdrawn. The StartSafe job pipeline is planned, the safe moves
// PendingParticipants -> Starting, and a job-executor tick is enqueued.
func (d *Doozez) StartSafe(ctx context.Context, userID, safeID string, force bool) (*model.Safe, error) {
	safe, err := d.datasource.GetSafeByID(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if safe.InitiatorID != userID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Only the initiator can start a safe", nil)
	}

	pending, err := d.datasource.GetPendingInvitationsForSafe(safeID)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		if !force {
			return nil, apierror.NewAPIError(apierror.ErrConflict,
				fmt.Sprintf("Safe %s still has %d pending invitations", safeID, len(pending)), nil)
		}
		for i := range pending {
			if err := pending[i].RemoveBySender(); err != nil {
				return nil, err
			}
			if err := d.datasource.UpdateInvitationStatus(pending[i].InvitationID, pending[i].Status); err != nil {
				return nil, err
			}
		}
	}

	job, err := d.CreateJobForStartSafe(ctx, safe, userID)
	if err != nil {
		return nil, err
	}
	if err := safe.BeginStarting(job.JobID); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateSafe(ctx, safe); err != nil {
		return nil, err
	}

	if d.queue != nil {
		if err := d.queue.queueJobExecutorTick(); err != nil {
			logrus.WithError(err).Warn("failed to enqueue job executor tick")
		}
	}
	return safe, nil
}

// Poke re-evaluates the startup condition after an external confirmation.
// The safe must be in Starting; the check-then-transition runs under a
// per-safe redis lock so concurrent event executions cannot interleave their
// pending-set reads with the Started transition.
func (d *Doozez) Poke(ctx context.Context, event PokeEvent) (*model.Safe, error) {
	switch event.Type {
	case PokePaymentConfirmed, PokeInstalmentActivated:
	default:
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("Unrecognized poke type %s", event.Type), nil)
	}
	if event.SafeID == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Poke event is missing a safe id", nil)
	}
	return d.evaluateSafeStart(ctx, event.SafeID)
}

// evaluateSafeStart flips a Starting safe to Started once no payments are
// awaiting the gateway and every instalment schedule is active.
func (d *Doozez) evaluateSafeStart(ctx context.Context, safeID string) (*model.Safe, error) {
	safe, err := d.datasource.GetSafeByID(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if safe.Status != model.SafeStarting {
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("Safe %s is %s, not %s", safeID, safe.Status, model.SafeStarting), nil)
	}

	locker := redlock.NewLocker(d.redis, fmt.Sprintf("poke:%s", safeID), database.GenerateUUIDWithSuffix("lock"))
	if err := locker.WaitLock(ctx, 30*time.Second, 10*time.Second); err != nil {
		return nil, err
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.WithError(err).Error("failed to release poke lock")
		}
	}()

	// re-read under the lock; another poke may already have flipped the safe
	safe, err = d.datasource.GetSafeByID(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if safe.Status != model.SafeStarting {
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("Safe %s is %s, not %s", safeID, safe.Status, model.SafeStarting), nil)
	}

	pendingPayments, err := d.datasource.CountPendingPaymentsForSafe(ctx, safeID)
	if err != nil {
		return nil, err
	}
	inactiveInstalments, err := d.datasource.CountInactiveInstalmentsForSafe(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if pendingPayments > 0 || inactiveInstalments > 0 {
		logrus.WithFields(logrus.Fields{
			"safe_id":              safeID,
			"pending_payments":     pendingPayments,
			"inactive_instalments": inactiveInstalments,
		}).Info("safe not ready to start")
		return safe, nil
	}

	if err := safe.MarkStarted(); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateSafe(ctx, safe); err != nil {
		return nil, err
	}
	logrus.WithField("safe_id", safeID).Info("safe started")
	d.notifySafeStarted(safe)
	return safe, nil
}

// completeSafeStartTask is the COMPLETE_SAFE_START task handler. It runs the
// same evaluation as a poke, covering safes whose startup produced nothing
// left to wait on.
func (d *Doozez) completeSafeStartTask(ctx context.Context, parameters json.RawMessage) error {
	var params model.CompleteSafeStartParams
	if err := json.Unmarshal(parameters, &params); err != nil {
		return err
	}
	_, err := d.evaluateSafeStart(ctx, params.SafeID)
	return err
}
