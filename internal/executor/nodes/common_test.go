package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SHXZ7/autofloww/internal/adapter"
)

func TestClassifyPredecessors_PartitionsByKind(t *testing.T) {
	preds := map[string]adapter.Result{
		"doc":    adapter.DocumentParsed("/tmp/a.json"),
		"report": adapter.ReportGenerated("/tmp/r.pdf"),
		"image":  adapter.ImageGenerated("/tmp/i.png"),
		"upload": adapter.FileUploaded("https://x/y"),
		"ai":     adapter.AIText("generated copy"),
		"err":    adapter.Error("Error: boom"),
		"note":   adapter.Notification("sent successfully to team"),
	}

	out := classifyPredecessors(preds)
	assert.Len(t, out.documents, 1)
	assert.Len(t, out.reports, 1)
	assert.Len(t, out.images, 1)
	assert.Len(t, out.uploads, 1)
	assert.Equal(t, []string{"generated copy"}, out.aiTexts)
}

func TestClassifyPredecessors_EmptyAITextSkipped(t *testing.T) {
	preds := map[string]adapter.Result{"ai": adapter.AIText("")}
	out := classifyPredecessors(preds)
	assert.Empty(t, out.aiTexts)
}

func TestFirstFreeFormText_PrefersAIText(t *testing.T) {
	preds := map[string]adapter.Result{
		"note": adapter.Notification("not it"),
		"ai":   adapter.AIText("the prompt"),
	}
	text, ok := firstFreeFormText(preds)
	assert.True(t, ok)
	assert.Equal(t, "the prompt", text)
}

func TestFirstFreeFormText_NoneFound(t *testing.T) {
	preds := map[string]adapter.Result{"note": adapter.Notification("nope")}
	_, ok := firstFreeFormText(preds)
	assert.False(t, ok)
}

func TestErrNoCredential_MentionsService(t *testing.T) {
	err := errNoCredential("twitter")
	assert.Contains(t, err.Error(), "twitter")
}
