package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

type smsConfig struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Mode    string `json:"mode"` // "sms" or "whatsapp", default whatsapp
}

// SMS sends via Twilio, serving the sms/whatsapp/twilio node kinds.
// Grounded on the teacher's TwilioProvider
// (internal/communication/sms/twilio.go), generalized to the spec's
// document/AI-text absorption rule shared with the email executor.
type SMS struct{}

func NewSMS() *SMS { return &SMS{} }

func (SMS) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg smsConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid sms config: %v", err)
		}
	}
	if cfg.To == "" {
		return adapter.Error("Error: to is required")
	}

	mode := strings.ToLower(cfg.Mode)
	if mode == "" {
		mode = "whatsapp"
	}

	message := absorbForMessage(cfg.Message, req.Predecessors)

	creds := req.Broker.Twilio(ctx)
	if creds.SID == "" || creds.Token == "" || creds.Phone == "" {
		return adapter.Error("Error: %v", errNoCredential("twilio"))
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{Username: creds.SID, Password: creds.Token})

	from := creds.Phone
	to := cfg.To
	if mode == "whatsapp" {
		from = "whatsapp:" + stripWhatsAppPrefix(from)
		to = "whatsapp:" + stripWhatsAppPrefix(to)
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(message)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return adapter.Error("Error: %v", err)
	}

	return adapter.Notification(fmt.Sprintf("%s sent successfully to %s", strings.ToUpper(mode), cfg.To))
}

func stripWhatsAppPrefix(s string) string {
	return strings.TrimPrefix(s, "whatsapp:")
}

// absorbForMessage applies the same document-summary/AI-text absorption
// rule §4.3 shares between email and sms/whatsapp/twilio, trimmed to a
// plain string (no attachments — SMS has none).
func absorbForMessage(message string, predecessors map[string]adapter.Result) string {
	cls := classifyPredecessors(predecessors)
	for _, d := range cls.documents {
		doc, err := loadParsedDocument(d.Path)
		if err != nil {
			continue
		}
		summary := doc.Content
		if len(summary) > documentSummaryLimit {
			summary = summary[:documentSummaryLimit]
		}
		message += "\n\n" + summary
	}
	if len(cls.aiTexts) > 0 {
		message += "\n\n" + strings.Join(cls.aiTexts, "\n\n")
	}
	return message
}
