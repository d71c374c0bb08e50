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

// CreateSafe handles the creation of a new safe on behalf of the caller.
func (a Api) CreateSafe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req model2.CreateSafe
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid safe data", err))
		return
	}
	if err := req.ValidateCreateSafe(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	safe, err := a.doozez.CreateSafe(c.Request.Context(), userID, req.Name, req.MonthlyPayment, req.Currency)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, safe)
}

// GetSafe retrieves a safe by ID.
func (a Api) GetSafe(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}
	safe, err := a.doozez.GetSafe(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, safe)
}

// StartSafe kicks off the startup workflow for a safe. Passing ?force=true
// withdraws any pending invitations instead of refusing the start.
func (a Api) StartSafe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id/start"})
		return
	}
	force := c.Query("force") == "true"

	safe, err := a.doozez.StartSafe(c.Request.Context(), userID, id, force)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, safe)
}

// ListParticipations returns a safe's active participations in join order.
func (a Api) ListParticipations(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id/participations"})
		return
	}
	participations, err := a.doozez.ListParticipations(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, participations)
}

// LeaveSafe withdraws the caller's participation.
func (a Api) LeaveSafe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}
	participation, err := a.doozez.LeaveSafe(c.Request.Context(), userID, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, participation)
}
