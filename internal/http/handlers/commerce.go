package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

const webhookSecretHeader = "X-Webhook-Secret"

var errWebhookSecret = errors.New("invalid webhook secret")

type CommerceHandler struct {
	log           *logger.Logger
	commerce      services.CommerceService
	webhookSecret string
}

func NewCommerceHandler(log *logger.Logger, commerce services.CommerceService, webhookSecret string) *CommerceHandler {
	return &CommerceHandler{
		log:           log.With("handler", "CommerceHandler"),
		commerce:      commerce,
		webhookSecret: webhookSecret,
	}
}

// POST /api/checkout
func (h *CommerceHandler) Checkout(c *gin.Context) {
	var req services.CheckoutInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.commerce.Checkout(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, true, gin.H{
		"order":       res.Order,
		"transaction": res.Transaction,
	})
}

// POST /api/payments/webhook
//
// Called by the payment provider. An empty configured secret rejects every
// call.
func (h *CommerceHandler) PaymentWebhook(c *gin.Context) {
	got := c.GetHeader(webhookSecretHeader)
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errWebhookSecret)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var in services.WebhookInput
	if err := json.Unmarshal(raw, &in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in.Raw = json.RawMessage(raw)
	res, err := h.commerce.HandlePaymentWebhook(c.Request.Context(), in)
	if err != nil {
		h.log.Warn("payment webhook rejected", "reference", in.Reference, "status", in.Status, "error", err)
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/learner/payments
func (h *CommerceHandler) ListPayments(c *gin.Context) {
	payments, err := h.commerce.ListPaymentsForUser(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"payments": payments})
}

// POST /api/admin/orders/:id/settle
func (h *CommerceHandler) SettleOrder(c *gin.Context) {
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.commerce.SettleOrder(c.Request.Context(), orderID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settlement": res})
}
