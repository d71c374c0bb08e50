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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doozez/doozez/database"
	"github.com/doozez/doozez/internal/apierror"
	"github.com/doozez/doozez/model"
)

func drawParticipants(n int) []model.Participation {
	participants := make([]model.Participation, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("ptc_%d", i+1)
		participants = append(participants, model.Participation{
			ParticipationID: id,
			SafeID:          "safe_1",
			Role:            model.RoleParticipant,
			Status:          model.ParticipationActive,
			PaymentMethod:   activatedPaymentMethod(fmt.Sprintf("pm_%d", i+1)),
		})
	}
	return participants
}

func TestDraw_AssignsContiguousPermutation(t *testing.T) {
	d, ds, _ := newTestService(t)
	system := &model.Participation{ParticipationID: "ptc_sys", SafeID: "safe_1", Role: model.RoleSystem}
	participants := drawParticipants(4)

	var persisted []database.WinAssignment
	ds.On("GetSystemParticipation", mock.Anything, "safe_1").Return(system, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return(participants, nil)
	ds.On("AssignWinSequences", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).([]database.WinAssignment)
	}).Return(nil)

	result, err := d.Draw(context.Background(), "safe_1")
	require.NoError(t, err)
	require.Len(t, result, 5)
	require.Len(t, persisted, 5)

	assert.Equal(t, "ptc_sys", persisted[0].ParticipationID)
	assert.Equal(t, 0, persisted[0].WinSequence)

	// the non-system assignments must be a permutation of 1..4 over ptc_1..ptc_4
	sequences := make(map[int]bool)
	ids := make(map[string]bool)
	for _, assignment := range persisted[1:] {
		sequences[assignment.WinSequence] = true
		ids[assignment.ParticipationID] = true
	}
	for seq := 1; seq <= 4; seq++ {
		assert.True(t, sequences[seq], "missing win sequence %d", seq)
	}
	for i := 1; i <= 4; i++ {
		assert.True(t, ids[fmt.Sprintf("ptc_%d", i)])
	}

	require.NotNil(t, result[0].WinSequence)
	assert.Equal(t, 0, *result[0].WinSequence)
	for i, participation := range result[1:] {
		require.NotNil(t, participation.WinSequence)
		assert.Equal(t, i+1, *participation.WinSequence)
	}
}

func TestDraw_AbortsWhenMethodNotActivated(t *testing.T) {
	d, ds, _ := newTestService(t)
	system := &model.Participation{ParticipationID: "ptc_sys", SafeID: "safe_1", Role: model.RoleSystem}
	participants := drawParticipants(3)
	participants[1].PaymentMethod.Status = model.PaymentMethodExternallySubmitted

	ds.On("GetSystemParticipation", mock.Anything, "safe_1").Return(system, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return(participants, nil)

	_, err := d.Draw(context.Background(), "safe_1")
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
	ds.AssertNotCalled(t, "AssignWinSequences", mock.Anything, mock.Anything)
}

func TestDraw_RequiresSystemParticipation(t *testing.T) {
	d, ds, _ := newTestService(t)
	ds.On("GetSystemParticipation", mock.Anything, "safe_1").Return(nil, nil)

	_, err := d.Draw(context.Background(), "safe_1")
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestDraw_RequiresParticipants(t *testing.T) {
	d, ds, _ := newTestService(t)
	system := &model.Participation{ParticipationID: "ptc_sys", SafeID: "safe_1", Role: model.RoleSystem}
	ds.On("GetSystemParticipation", mock.Anything, "safe_1").Return(system, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return([]model.Participation{}, nil)

	_, err := d.Draw(context.Background(), "safe_1")
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestDraw_PersistenceFailureAborts(t *testing.T) {
	d, ds, _ := newTestService(t)
	system := &model.Participation{ParticipationID: "ptc_sys", SafeID: "safe_1", Role: model.RoleSystem}
	ds.On("GetSystemParticipation", mock.Anything, "safe_1").Return(system, nil)
	ds.On("GetNonSystemParticipations", mock.Anything, "safe_1").Return(drawParticipants(2), nil)
	ds.On("AssignWinSequences", mock.Anything, mock.Anything).Return(fmt.Errorf("row vanished"))

	_, err := d.Draw(context.Background(), "safe_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row vanished")
}
