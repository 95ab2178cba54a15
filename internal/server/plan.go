package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	plandomain "github.com/invopad/invopad/internal/plan/domain"
)

func (s *Server) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": plandomain.All()})
}
