package nodes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"strings"

	"github.com/mailgun/mailgun-go/v4"
	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/config"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const documentSummaryLimit = 5000

// emailAttachment is a user-configured attachment (content as base64), as
// distinct from the predecessor-driven attachments §4.3 adds automatically.
type emailAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

type emailConfig struct {
	Provider    string            `json:"provider"` // "" (smtp, default), "sendgrid", "mailgun"
	To          string            `json:"to"`
	CC          string            `json:"cc"`
	BCC         string            `json:"bcc"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	Attachments []emailAttachment `json:"attachments"`
}

// builtAttachment is an attachment ready to send, whatever its source
// (user-configured or absorbed from a predecessor result).
type builtAttachment struct {
	filename    string
	contentType string
	data        []byte
}

// Email sends mail via SMTP by default, or via SendGrid/Mailgun when the
// node's provider field names one; if that provider's credential is not
// configured the node fails rather than falling back to SMTP. Grounded
// on the teacher's SendEmailAction (internal/executor/actions/communication
// /send_email.go) and its sendgrid.go/mailgun.go providers, generalized to
// this spec's predecessor-absorption rules (§4.3) rather than the
// teacher's flat attachment list.
type Email struct {
	SMTP config.Config
}

func NewEmail(cfg config.Config) *Email { return &Email{SMTP: cfg} }

func (e *Email) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg emailConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid email config: %v", err)
		}
	}
	if cfg.To == "" || cfg.Subject == "" {
		return adapter.Error("Error: to and subject are required")
	}

	body, attachments := absorbForEmail(cfg.Body, req.Predecessors)

	for _, a := range cfg.Attachments {
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return adapter.Error("Error: invalid attachment %s: %v", a.Filename, err)
		}
		attachments = append(attachments, builtAttachment{filename: a.Filename, contentType: a.ContentType, data: data})
	}

	var err error
	switch cfg.Provider {
	case "sendgrid":
		err = e.sendViaSendGrid(ctx, req, cfg, body, attachments)
	case "mailgun":
		err = e.sendViaMailgun(ctx, req, cfg, body, attachments)
	default:
		err = e.sendViaSMTP(cfg, body, attachments)
	}
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.Notification(fmt.Sprintf("Email sent successfully to %s", cfg.To))
}

// absorbForEmail implements spec §4.3's email absorption rules (a)-(e).
func absorbForEmail(body string, predecessors map[string]adapter.Result) (string, []builtAttachment) {
	cls := classifyPredecessors(predecessors)
	var attachments []builtAttachment

	for _, d := range cls.documents {
		doc, err := loadParsedDocument(d.Path)
		if err != nil {
			continue
		}
		summary := doc.Content
		if len(summary) > documentSummaryLimit {
			summary = summary[:documentSummaryLimit]
		}
		body += "\n\n--- Document Summary ---\n" + summary
		if raw, err := jsonFile(d.Path); err == nil {
			attachments = append(attachments, builtAttachment{filename: baseName(d.Path), contentType: "application/json", data: raw})
		}
	}
	for _, r := range cls.reports {
		if raw, err := jsonFile(r.Path); err == nil {
			attachments = append(attachments, builtAttachment{filename: baseName(r.Path), contentType: "application/octet-stream", data: raw})
		}
	}
	for _, im := range cls.images {
		if raw, err := jsonFile(im.Path); err == nil {
			attachments = append(attachments, builtAttachment{filename: baseName(im.Path), contentType: "image/png", data: raw})
		}
	}
	for _, u := range cls.uploads {
		body += "\n\nFile: " + u.URL
	}
	if len(cls.aiTexts) > 0 {
		body += "\n\n--- AI Generated Content ---\n" + strings.Join(cls.aiTexts, "\n\n")
	}
	return body, attachments
}

func jsonFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func (e *Email) sendViaSMTP(cfg emailConfig, body string, attachments []builtAttachment) error {
	if e.SMTP.EmailUser == "" || e.SMTP.EmailPass == "" {
		return fmt.Errorf("smtp credentials not configured")
	}
	auth := smtp.PlainAuth("", e.SMTP.EmailUser, e.SMTP.EmailPass, e.SMTP.SMTPServer)
	addr := fmt.Sprintf("%s:%d", e.SMTP.SMTPServer, e.SMTP.SMTPPort)

	msg, err := buildMIMEMessage(e.SMTP.EmailUser, cfg, body, attachments)
	if err != nil {
		return err
	}

	to := splitAddrs(cfg.To)
	to = append(to, splitAddrs(cfg.CC)...)
	to = append(to, splitAddrs(cfg.BCC)...)
	return smtp.SendMail(addr, auth, e.SMTP.EmailUser, to, msg)
}

func buildMIMEMessage(from string, cfg emailConfig, body string, attachments []builtAttachment) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", cfg.To)
	if cfg.CC != "" {
		fmt.Fprintf(&buf, "Cc: %s\r\n", cfg.CC)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", cfg.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=UTF-8"}})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		header := textproto.MIMEHeader{}
		ct := a.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, a.filename))
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(a.data)
		if _, err := part.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func splitAddrs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *Email) sendViaSendGrid(ctx context.Context, req executor.Request, cfg emailConfig, body string, attachments []builtAttachment) error {
	creds := req.Broker.Email(ctx)
	if creds.SendGridAPIKey == "" {
		return errNoCredential("sendgrid")
	}

	from := sgmail.NewEmail("", e.SMTP.EmailUser)
	message := sgmail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = cfg.Subject

	personalization := sgmail.NewPersonalization()
	for _, to := range splitAddrs(cfg.To) {
		personalization.AddTos(sgmail.NewEmail("", to))
	}
	for _, cc := range splitAddrs(cfg.CC) {
		personalization.AddCCs(sgmail.NewEmail("", cc))
	}
	for _, bcc := range splitAddrs(cfg.BCC) {
		personalization.AddBCCs(sgmail.NewEmail("", bcc))
	}
	message.AddPersonalizations(personalization)
	message.AddContent(sgmail.NewContent("text/plain", body))

	for _, a := range attachments {
		att := sgmail.NewAttachment()
		att.SetFilename(a.filename)
		att.SetContent(base64.StdEncoding.EncodeToString(a.data))
		att.SetType(a.contentType)
		att.SetDisposition("attachment")
		message.AddAttachment(att)
	}

	client := sendgrid.NewSendClient(creds.SendGridAPIKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func (e *Email) sendViaMailgun(ctx context.Context, req executor.Request, cfg emailConfig, body string, attachments []builtAttachment) error {
	creds := req.Broker.Email(ctx)
	if creds.MailgunDomain == "" || creds.MailgunAPIKey == "" {
		return errNoCredential("mailgun")
	}

	mg := mailgun.NewMailgun(creds.MailgunDomain, creds.MailgunAPIKey)
	message := mg.NewMessage(e.SMTP.EmailUser, cfg.Subject, body, splitAddrs(cfg.To)...)
	for _, cc := range splitAddrs(cfg.CC) {
		message.AddCC(cc)
	}
	for _, bcc := range splitAddrs(cfg.BCC) {
		message.AddBCC(bcc)
	}
	for _, a := range attachments {
		message.AddBufferAttachment(a.filename, a.data)
	}

	resp, _, err := mg.Send(ctx, message)
	if err != nil {
		return err
	}
	if !strings.Contains(resp, "Queued") {
		return fmt.Errorf("mailgun returned unexpected response: %s", resp)
	}
	return nil
}
