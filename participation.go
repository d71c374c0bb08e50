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

	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// ListParticipations returns the safe's active participations in join order.
func (d *Doozez) ListParticipations(ctx context.Context, safeID string) ([]model.Participation, error) {
	return d.datasource.GetActiveParticipationsForSafe(ctx, safeID)
}

// LeaveSafe marks the caller's participation as Left. Leaving is only
// possible while the safe is still gathering participants.
func (d *Doozez) LeaveSafe(ctx context.Context, userID, participationID string) (*model.Participation, error) {
	participation, err := d.datasource.GetParticipationByID(participationID)
	if err != nil {
		return nil, err
	}
	if participation.UserID != userID {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Participation belongs to another user", nil)
	}

	safe, err := d.datasource.GetSafeByID(ctx, participation.SafeID)
	if err != nil {
		return nil, err
	}
	if safe.Status != model.SafePendingParticipants {
		return nil, apierror.NewAPIError(apierror.ErrConflict, "Cannot leave a safe that has begun starting", nil)
	}

	if err := participation.Leave(); err != nil {
		return nil, err
	}
	if err := d.datasource.UpdateParticipationStatus(participation.ParticipationID, participation.Status); err != nil {
		return nil, err
	}
	return participation, nil
}
