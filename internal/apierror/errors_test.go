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

package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/doozez/doozez/internal/apierror"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	details := "participation not found for safe"
	apiErr := apierror.NewAPIError(apierror.ErrNotFound, "Participation not found", details)

	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
	assert.Equal(t, "Participation not found", apiErr.Message)
	assert.Equal(t, details, apiErr.Details)
	assert.Equal(t, "NOT_FOUND: Participation not found", apiErr.Error())
}

func TestIsValidation(t *testing.T) {
	assert.True(t, apierror.IsValidation(apierror.NewAPIError(apierror.ErrInvalidInput, "bad", nil)))
	assert.True(t, apierror.IsValidation(apierror.NewAPIError(apierror.ErrConflict, "dup", nil)))
	assert.False(t, apierror.IsValidation(apierror.NewAPIError(apierror.ErrTransitionNotAllowed, "illegal", nil)))
	assert.False(t, apierror.IsValidation(errors.New("plain")))
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "NotFound Error",
			err:      apierror.NewAPIError(apierror.ErrNotFound, "Resource not found", nil),
			expected: http.StatusNotFound,
		},
		{
			name:     "Conflict Error",
			err:      apierror.NewAPIError(apierror.ErrConflict, "Conflict occurred", nil),
			expected: http.StatusConflict,
		},
		{
			name:     "InvalidInput Error",
			err:      apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid input", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "Transition Error",
			err:      apierror.NewAPIError(apierror.ErrTransitionNotAllowed, "Illegal transition", nil),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Unknown Error",
			err:      errors.New("Unknown error"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusCode := apierror.MapErrorToHTTPStatus(tt.err)
			assert.Equal(t, tt.expected, statusCode)
		})
	}
}
