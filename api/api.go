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

	"github.com/doozez/doozez"
	"github.com/doozez/doozez/api/middleware"
	"github.com/doozez/doozez/config"
	"github.com/doozez/doozez/internal/apierror"
)

// CallerHeader carries the acting user's id. The API fronts a trusted
// application backend, which authenticates end users itself and forwards
// their identity here.
const CallerHeader = "X-Doozez-User"

type Api struct {
	doozez *doozez.Doozez
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/users", a.CreateUser)
	router.GET("/users/:id", a.GetUser)

	router.POST("/safes", a.CreateSafe)
	router.GET("/safes/:id", a.GetSafe)
	router.POST("/safes/:id/start", a.StartSafe)
	router.GET("/safes/:id/participations", a.ListParticipations)

	router.POST("/invitations", a.CreateInvitation)
	router.POST("/invitations/:id/accept", a.AcceptInvitation)
	router.POST("/invitations/:id/decline", a.DeclineInvitation)
	router.DELETE("/invitations/:id", a.RemoveInvitation)

	router.POST("/payment-methods", a.CreatePaymentMethod)
	router.GET("/payment-methods/:id", a.GetPaymentMethod)
	router.POST("/payment-methods/:id/complete", a.CompleteApprovalFlow)

	router.DELETE("/participations/:id", a.LeaveSafe)

	router.GET("/jobs/:id", a.GetJob)
	router.GET("/events/:id", a.GetEvent)

	router.POST("/webhooks/gateway", a.GatewayWebhook)
	return a.router
}

func NewAPI(d *doozez.Doozez) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{doozez: d, router: r}
}

// callerID extracts the acting user from the request, failing the request
// when the header is absent.
func callerID(c *gin.Context) (string, bool) {
	userID := c.GetHeader(CallerHeader)
	if userID == "" {
		c.JSON(http.StatusBadRequest, apierror.NewAPIError(apierror.ErrBadRequest, "missing "+CallerHeader+" header", nil))
		return "", false
	}
	return userID, true
}

// handleServiceError renders a service-layer failure with the status its
// error class maps to.
func handleServiceError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}
