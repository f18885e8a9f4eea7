// services/notifier.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"lashstudio-backend/models"
)

// Notifier sends operator alerts (new paid booking, cancellation) via
// Twilio SMS/WhatsApp. Without Twilio credentials it degrades to logging
// only, so local and test runs never hit the network.
type Notifier struct {
	client     *twilio.RestClient
	operatorTo string
	enabled    bool
}

func NewNotifier() *Notifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	operatorTo := os.Getenv("OPERATOR_PHONE")

	if accountSid == "" || operatorTo == "" {
		log.Println("[NOTIFY] Twilio not configured, operator alerts will be logged only")
		return &Notifier{enabled: false}
	}

	return &Notifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		operatorTo: operatorTo,
		enabled:    true,
	}
}

func (n *Notifier) send(message string) {
	if !n.enabled {
		log.Printf("[NOTIFY] %s", strings.ReplaceAll(message, "\n", " | "))
		return
	}

	to := n.operatorTo
	params := &twilioApi.CreateMessageParams{}
	params.SetBody(message)

	// Use WhatsApp when the operator number is E.164 with a '+' prefix
	if strings.HasPrefix(to, "+") && os.Getenv("TWILIO_WHATSAPP_NUMBER") != "" {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetTo(to)
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("[NOTIFY] Failed to send operator alert: %v", err)
	} else if resp.Sid != nil {
		log.Printf("[NOTIFY] Operator alert sent, SID: %s", *resp.Sid)
	}
}

// BookingPaid alerts the operator about a freshly paid booking.
func (n *Notifier) BookingPaid(b *models.Booking, serviceName string) {
	addon := ""
	if b.WithAddon {
		addon = " + addon"
	}
	n.send(fmt.Sprintf(
		"New booking (prepaid)\nClient: %s\nService: %s%s\nDate: %s %s-%s\nPrepaid: %.2f",
		b.ClientName, serviceName, addon, b.Date, b.StartTime, b.EndTime, b.PrepaidAmount,
	))
}

// BookingCancelled alerts the operator about a cancellation.
func (n *Notifier) BookingCancelled(b *models.Booking, serviceName string, byOperator bool) {
	who := "client"
	if byOperator {
		who = "operator"
	}
	n.send(fmt.Sprintf(
		"Booking cancelled by %s\nClient: %s\nService: %s\nDate: %s %s",
		who, b.ClientName, serviceName, b.Date, b.StartTime,
	))
}
