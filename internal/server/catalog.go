package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/invopad/invopad/internal/catalog/domain"
	"github.com/invopad/invopad/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type serviceRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsActive    *bool           `json:"is_active"`
}

func (s *Server) CreateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateServiceRequest{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListServices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name       string `form:"name"`
		ActiveOnly string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeOnly, err := parseOptionalBool(query.ActiveOnly)
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListServiceRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		Name:       strings.TrimSpace(query.Name),
		ActiveOnly: activeOnly != nil && *activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetServiceByID(c *gin.Context) {
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Update(c.Request.Context(), catalogdomain.UpdateServiceRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		UnitPrice:   req.UnitPrice,
		IsActive:    req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
