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
	"github.com/doozez/doozez/model"
)

// CreateUser handles the registration of a new user.
func (a Api) CreateUser(c *gin.Context) {
	var req model2.CreateUser
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid user data", err))
		return
	}
	if err := req.ValidateCreateUser(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	usr, err := a.doozez.CreateUser(model.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, usr)
}

// GetUser retrieves a user by ID.
func (a Api) GetUser(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}
	usr, err := a.doozez.GetUser(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, usr)
}

// CreatePaymentMethod starts the hosted mandate-approval flow for a new
// payment method and returns the approval URL the user must visit.
func (a Api) CreatePaymentMethod(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req model2.CreatePaymentMethod
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid payment method data", err))
		return
	}
	if err := req.ValidateCreatePaymentMethod(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	setup, err := a.doozez.CreatePaymentMethod(c.Request.Context(), userID, req.RedirectURL, req.IsDefault)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, setup)
}

// GetPaymentMethod retrieves a payment method by ID.
func (a Api) GetPaymentMethod(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}
	method, err := a.doozez.GetPaymentMethod(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

// CompleteApprovalFlow finishes the hosted approval flow after the user
// returns from the gateway.
func (a Api) CompleteApprovalFlow(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id/complete"})
		return
	}
	var req model2.CompleteApprovalFlow
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid approval flow data", err))
		return
	}
	if err := req.ValidateCompleteApprovalFlow(); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrInvalidInput, err.Error(), nil))
		return
	}

	method, err := a.doozez.CompleteApprovalFlow(c.Request.Context(), id, req.FlowID, req.SessionToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, method)
}
