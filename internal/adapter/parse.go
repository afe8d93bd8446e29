package adapter

import "strings"

// notificationSuffixes recognises the notification sentinels
// ("<MODE> sent successfully to <addr>", "Email sent successfully to
// <addr>") that are not free AI text but are also not one of the
// path-bearing tags. Each marker is matched as a substring.
var notificationSuffixes = []string{
	"sent successfully to",
}

// Parse recovers the tagged Result a wire string represents. This is used
// when a predecessor's result reaches an executor as a plain string
// (history replay, tests, sub-workflow boundaries) rather than as the
// Result value the producing executor built in-process.
//
// Tag recognition is exact and case-sensitive, matching spec §4.4 and its
// documented asymmetry with the (case-insensitive) skip rules in IsAIText.
func Parse(s string) Result {
	switch {
	case strings.HasPrefix(s, "Document parsed: "):
		return DocumentParsed(strings.TrimPrefix(s, "Document parsed: "))
	case strings.HasPrefix(s, "Report generated: "):
		return ReportGenerated(strings.TrimPrefix(s, "Report generated: "))
	case strings.HasPrefix(s, "Image generated: "):
		return ImageGenerated(strings.TrimPrefix(s, "Image generated: "))
	case strings.HasPrefix(s, "File uploaded: "):
		return FileUploaded(strings.TrimPrefix(s, "File uploaded: "))
	case strings.HasPrefix(s, "Schedule set: "):
		return ScheduleSet(strings.TrimPrefix(s, "Schedule set: "))
	case s == "Webhook triggered (no URL provided)":
		return WebhookTriggered()
	case strings.HasPrefix(s, "Error:") || strings.HasPrefix(s, "Failed:"):
		return Result{Kind: KindError, Err: s}
	case containsAny(s, notificationSuffixes):
		return Notification(s)
	default:
		if IsAIText(s) {
			return AIText(s)
		}
		return Notification(s)
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// skipSubstrings are the lower-cased markers that exclude a predecessor
// result from AI-text absorption, per spec §4.5: "downstream executors'
// absorption rules explicitly skip strings containing ... when looking
// for AI text". Matching is case-insensitive, unlike tag recognition in
// Parse — the asymmetry is preserved as-is per spec §9.
var skipSubstrings = []string{
	"failed",
	"error",
	"not implemented",
	"sent successfully",
	"uploaded",
	"generated:",
	"deleted",
	"saved",
	"webhook",
	"document parsed:",
}

// IsAIText reports whether s should be treated as free-form AI-generated
// text: it matches none of the known tags/skip markers and is longer than
// 10 non-whitespace characters (spec §4.4).
func IsAIText(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range skipSubstrings {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	if nonWhitespaceLen(s) <= 10 {
		return false
	}
	return true
}

func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			n++
		}
	}
	return n
}

// Truncate trims s to at most limit runes, appending an ellipsis if it
// was cut (spec §4.4 edge case (c)).
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
