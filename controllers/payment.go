// controllers/payment.go
package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lashstudio-backend/services"
)

type PaymentController struct {
	Payments *services.PaymentService
}

// Webhook receives gateway callbacks. It always answers 200 so the
// gateway never retries: processing errors are logged, not surfaced.
func (p *PaymentController) Webhook(c *gin.Context) {
	var event services.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		log.Printf("[PAYMENT] Malformed webhook payload: %v", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	p.Payments.ProcessWebhook(event)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
