package nodes

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/SHXZ7/autofloww/internal/adapter"
)

var errEmptyResponse = errors.New("empty response from provider")

func errNoCredential(service string) error {
	return fmt.Errorf("no %s credential configured", service)
}

// parsedDocument mirrors the JSON shape spec §4.4 assigns to
// `Document parsed:` output files.
type parsedDocument struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Metadata struct {
		FileName       string `json:"file_name"`
		CharacterCount int    `json:"character_count"`
	} `json:"metadata"`
}

func loadRawDocument(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func loadParsedDocument(path string) (parsedDocument, error) {
	var doc parsedDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// absorption classifies a predecessor Result the way spec §4.3's per-kind
// absorption rules (email/sms/discord/...) consume them.
type absorption struct {
	documents []adapter.Result // KindDocumentParsed
	reports   []adapter.Result // KindReportGenerated
	images    []adapter.Result // KindImageGenerated
	uploads   []adapter.Result // KindFileUploaded
	aiTexts   []string         // free-form AI content
}

// classifyPredecessors partitions req.Predecessors by the categories
// email/sms/discord executors absorb, skipping error/failed/notification
// results so they are never mistaken for AI content (spec §4.4's skip
// rules, already enforced by adapter.Parse at the engine boundary — here
// we only additionally exclude KindError/KindNotification/KindScheduleSet/
// KindWebhookTriggered from the AI-text bucket).
func classifyPredecessors(predecessors map[string]adapter.Result) absorption {
	var out absorption
	for _, r := range predecessors {
		switch r.Kind {
		case adapter.KindDocumentParsed:
			out.documents = append(out.documents, r)
		case adapter.KindReportGenerated:
			out.reports = append(out.reports, r)
		case adapter.KindImageGenerated:
			out.images = append(out.images, r)
		case adapter.KindFileUploaded:
			out.uploads = append(out.uploads, r)
		case adapter.KindAIText:
			if r.Text != "" {
				out.aiTexts = append(out.aiTexts, r.Text)
			}
		}
	}
	return out
}

// firstFreeFormText returns the first non-error predecessor's free-form
// text, for nodes (image_generation) that fall back to "whatever the
// upstream AI node said" when their own prompt/content config is empty.
func firstFreeFormText(predecessors map[string]adapter.Result) (string, bool) {
	for _, r := range predecessors {
		if r.Kind == adapter.KindAIText && r.Text != "" {
			return r.Text, true
		}
	}
	return "", false
}

func timestampHeader() string {
	return time.Now().UTC().Format(time.RFC3339)
}
