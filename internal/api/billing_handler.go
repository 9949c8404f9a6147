package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifelessons-backend-go/internal/core"
)

// BillingHandler handles payment confirmation endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// PaymentSuccess handles PATCH /payment-success?session_id=. The checkout
// session is resolved with the payment provider; the client only supplies its ID.
func (h *BillingHandler) PaymentSuccess(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	result, err := h.billingService.ConfirmCheckout(c.Request.Context(), identity, c.Query("session_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if result.Settled {
		h.logger.Info("Premium upgrade settled", zap.String("email", identity.Email))
	}
	c.JSON(http.StatusOK, result)
}

// History handles GET /payments/history.
func (h *BillingHandler) History(c *gin.Context) {
	identity, ok := caller(c)
	if !ok {
		return
	}
	payments, err := h.billingService.History(c.Request.Context(), identity.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
