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
	"math/rand"

	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

// Draw assigns the safe's payout order. The system participation is always
// paid out first (win_sequence 0); everyone else is shuffled into positions
// 1..N. Every participant must hold an externally activated payment method,
// otherwise the whole draw aborts and nothing is persisted.
func (d *Doozez) Draw(ctx context.Context, safeID string) ([]model.Participation, error) {
	system, err := d.datasource.GetSystemParticipation(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if system == nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("System participation not found for safe %s", safeID), nil)
	}

	participants, err := d.datasource.GetNonSystemParticipations(ctx, safeID)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, fmt.Sprintf("No participants to draw for safe %s", safeID), nil)
	}

	for _, participant := range participants {
		if participant.PaymentMethod == nil || !participant.PaymentMethod.IsActive() {
			return nil, apierror.NewAPIError(apierror.ErrInvalidInput,
				fmt.Sprintf("Payment method for participation %s is not activated", participant.ParticipationID), nil)
		}
	}

	rand.Shuffle(len(participants), func(i, j int) {
		participants[i], participants[j] = participants[j], participants[i]
	})

	assignments := make([]database.WinAssignment, 0, len(participants)+1)
	assignments = append(assignments, database.WinAssignment{ParticipationID: system.ParticipationID, WinSequence: 0})
	for i := range participants {
		assignments = append(assignments, database.WinAssignment{ParticipationID: participants[i].ParticipationID, WinSequence: i + 1})
	}
	if err := d.datasource.AssignWinSequences(ctx, assignments); err != nil {
		return nil, err
	}

	systemSeq := 0
	system.WinSequence = &systemSeq
	result := append([]model.Participation{*system}, participants...)
	for i := range result[1:] {
		seq := i + 1
		result[i+1].WinSequence = &seq
	}
	return result, nil
}

// drawTask is the DRAW task handler.
func (d *Doozez) drawTask(ctx context.Context, parameters json.RawMessage) error {
	var params model.DrawParams
	if err := json.Unmarshal(parameters, &params); err != nil {
		return err
	}
	_, err := d.Draw(ctx, params.SafeID)
	return err
}
