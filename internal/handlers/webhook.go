package handlers

import (
	"log"
	"strings"

	"carepay/internal/models"
	"carepay/internal/services/gateway"
	"carepay/internal/services/withdrawal"
	"carepay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives gateway callbacks. The endpoint is public; every
// payload is authenticated by its HMAC signature before anything is applied.
type WebhookHandler struct {
	gateway           *gateway.Client
	withdrawalService withdrawal.Service
}

func NewWebhookHandler(gw *gateway.Client, withdrawalService withdrawal.Service) *WebhookHandler {
	return &WebhookHandler{
		gateway:           gw,
		withdrawalService: withdrawalService,
	}
}

// HandleGatewayWebhook verifies the signature and reconciles the referenced
// order. Unknown order codes are acknowledged so the gateway stops retrying.
func (h *WebhookHandler) HandleGatewayWebhook(c *fiber.Ctx) error {
	var payload struct {
		Code      string                 `json:"code"`
		Data      map[string]interface{} `json:"data"`
		Signature string                 `json:"signature"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.BadRequest(c, "Invalid webhook payload")
	}
	if payload.Data == nil || payload.Signature == "" {
		return utils.BadRequest(c, "Missing data or signature")
	}

	if !h.gateway.VerifySignature(payload.Data, payload.Signature) {
		log.Println("webhook rejected: bad signature")
		return utils.Unauthorized(c, "Invalid signature")
	}

	orderCode, _ := payload.Data["orderCode"].(string)
	if orderCode == "" {
		return utils.BadRequest(c, "Missing order code")
	}

	status, _ := payload.Data["status"].(string)
	if status == "" && payload.Code == "00" {
		status = gateway.OrderStatusPaid
	}

	switch {
	case strings.HasPrefix(orderCode, string(gateway.PayoutKindAdmin)):
		_, err := h.withdrawalService.ReconcileOrder(c.Context(), orderCode, status, models.JSON(payload.Data))
		if err != nil && err != withdrawal.ErrNotFound {
			return utils.InternalError(c, "Failed to reconcile withdrawal")
		}
	default:
		// Deposits and caregiver payouts are reconciled by their own
		// polling flows; acknowledge so the gateway stops retrying.
		log.Printf("webhook for unhandled order %s (status %s)", orderCode, status)
	}

	return utils.Success(c, fiber.Map{"received": true})
}
