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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	model2 "github.com/doozez/doozez/api/model"
	"github.com/doozez/doozez/internal/apierror"
)

// CreateInvitation invites a user into a safe on behalf of the caller.
func (a Api) CreateInvitation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req model2.CreateInvitation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid invitation data", err))
		return
	}
	if err := req.ValidateCreateInvitation(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	invitation, err := a.doozez.CreateInvitation(c.Request.Context(), userID, req.RecipientID, req.SafeID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invitation)
}

// AcceptInvitation accepts an invitation, joining the caller to the safe with
// the supplied payment method.
func (a Api) AcceptInvitation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id/accept"})
		return
	}
	var req model2.AcceptInvitation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid accept data", err))
		return
	}
	if err := req.ValidateAcceptInvitation(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	invitation, err := a.doozez.AcceptInvitation(c.Request.Context(), userID, id, req.PaymentMethodID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitation)
}

// DeclineInvitation declines an invitation on behalf of the caller.
func (a Api) DeclineInvitation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id/decline"})
		return
	}
	invitation, err := a.doozez.DeclineInvitation(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitation)
}

// RemoveInvitation withdraws a pending invitation sent by the caller.
func (a Api) RemoveInvitation(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}
	invitation, err := a.doozez.RemoveInvitation(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invitation)
}
