package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
)

func (s *Server) GetSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetEntitlements(c *gin.Context) {
	resp, err := s.subscriptionSvc.Entitlements(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ChangePlan(c *gin.Context) {
	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subscriptionSvc.ChangePlan(c.Request.Context(), subscriptiondomain.ChangePlanRequest{
		PlanID: strings.TrimSpace(req.PlanID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelSubscription(c *gin.Context) {
	resp, err := s.subscriptionSvc.Cancel(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
