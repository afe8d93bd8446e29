package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SHXZ7/autofloww/internal/adapter"
)

func TestResult_StringTagsMatchWireProtocol(t *testing.T) {
	cases := []struct {
		name string
		in   adapter.Result
		want string
	}{
		{"document", adapter.DocumentParsed("/tmp/a.json"), "Document parsed: /tmp/a.json"},
		{"report", adapter.ReportGenerated("/tmp/r.pdf"), "Report generated: /tmp/r.pdf"},
		{"image", adapter.ImageGenerated("/tmp/i.png"), "Image generated: /tmp/i.png"},
		{"upload", adapter.FileUploaded("https://x/y"), "File uploaded: https://x/y"},
		{"schedule", adapter.ScheduleSet("* * * * *"), "Schedule set: * * * * *"},
		{"webhook", adapter.WebhookTriggered(), "Webhook triggered (no URL provided)"},
		{"notification", adapter.Notification("sent"), "sent"},
		{"aitext", adapter.AIText("hello"), "hello"},
		{"error", adapter.Error("Error: bad %s", "input"), "Error: bad input"},
		{"failed", adapter.Failed("timeout"), "Failed: timeout"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.in.String())
		})
	}
}

func TestResult_IsError(t *testing.T) {
	assert.True(t, adapter.Error("boom").IsError())
	assert.True(t, adapter.Failed("boom").IsError())
	assert.False(t, adapter.Notification("ok").IsError())
}

func TestParse_RoundTripsTaggedResults(t *testing.T) {
	assert.Equal(t, adapter.DocumentParsed("/tmp/a.json"), adapter.Parse("Document parsed: /tmp/a.json"))
	assert.Equal(t, adapter.ReportGenerated("/tmp/r.pdf"), adapter.Parse("Report generated: /tmp/r.pdf"))
	assert.Equal(t, adapter.WebhookTriggered(), adapter.Parse("Webhook triggered (no URL provided)"))

	parsed := adapter.Parse("Error: something broke")
	assert.True(t, parsed.IsError())
	assert.Equal(t, "Error: something broke", parsed.Err)
}

func TestParse_NotificationSuffixWins(t *testing.T) {
	parsed := adapter.Parse("Email sent successfully to alice@example.com")
	assert.Equal(t, adapter.KindNotification, parsed.Kind)
}
