package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	"github.com/invopad/invopad/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type invoiceRequest struct {
	ClientID string          `json:"client_id"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	DueDate  string          `json:"due_date"`
	Items    []lineItemInput `json:"items"`
}

type lineItemInput struct {
	ServiceID   string `json:"service_id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
}

func (req invoiceRequest) items() []invoicedomain.LineItemInput {
	items := make([]invoicedomain.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, invoicedomain.LineItemInput{
			ServiceID:   strings.TrimSpace(item.ServiceID),
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
		})
	}
	return items
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseRequiredTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		ClientID: strings.TrimSpace(req.ClientID),
		TaxRate:  req.TaxRate,
		DueDate:  dueDate,
		Items:    req.items(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status      string `form:"status"`
		ClientID    string `form:"client_id"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}

	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:   query.PageToken,
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		ClientID:    strings.TrimSpace(query.ClientID),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDraftInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseRequiredTime(req.DueDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	resp, err := s.invoiceSvc.UpdateDraft(c.Request.Context(), invoicedomain.UpdateDraftRequest{
		InvoiceID: strings.TrimSpace(c.Param("id")),
		ClientID:  strings.TrimSpace(req.ClientID),
		TaxRate:   req.TaxRate,
		DueDate:   dueDate,
		Items:     req.items(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
