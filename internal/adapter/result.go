// Package adapter implements the tagged-string result protocol nodes use
// to communicate with each other, plus the internal tagged-union
// representation (Result) that replaces pervasive substring sniffing.
//
// Every executor produces a Result internally and the engine flattens it
// to a wire string only at its boundary (Result.String). Predecessor
// results arriving as plain strings (e.g. from history or tests) are
// recovered with Parse.
package adapter

import "fmt"

// Kind discriminates the variants of a node's result.
type Kind int

const (
	KindAIText Kind = iota
	KindDocumentParsed
	KindReportGenerated
	KindImageGenerated
	KindFileUploaded
	KindNotification
	KindScheduleSet
	KindWebhookTriggered
	KindError
)

// Result is the tagged union every executor returns. Exactly one
// constructor should be used to build a Result; String renders the
// wire-protocol form described in spec §4.4.
type Result struct {
	Kind  Kind
	Text  string // AIText, Notification free-form payload
	Path  string // DocumentParsed, ReportGenerated, ImageGenerated path
	URL   string // FileUploaded url-or-path
	Expr  string // ScheduleSet cron expression
	Err   string // Error reason
}

func AIText(text string) Result               { return Result{Kind: KindAIText, Text: text} }
func DocumentParsed(path string) Result        { return Result{Kind: KindDocumentParsed, Path: path} }
func ReportGenerated(path string) Result        { return Result{Kind: KindReportGenerated, Path: path} }
func ImageGenerated(path string) Result         { return Result{Kind: KindImageGenerated, Path: path} }
func FileUploaded(url string) Result            { return Result{Kind: KindFileUploaded, URL: url} }
func Notification(text string) Result           { return Result{Kind: KindNotification, Text: text} }
func ScheduleSet(expr string) Result            { return Result{Kind: KindScheduleSet, Expr: expr} }
func WebhookTriggered() Result                  { return Result{Kind: KindWebhookTriggered} }
func Error(format string, args ...interface{}) Result {
	return Result{Kind: KindError, Err: fmt.Sprintf(format, args...)}
}
func Failed(format string, args ...interface{}) Result {
	return Result{Kind: KindError, Err: "Failed: " + fmt.Sprintf(format, args...)}
}

// String renders the Result to the wire-protocol tagged string described
// in spec §4.4. This is the only place a Result becomes a plain string.
func (r Result) String() string {
	switch r.Kind {
	case KindDocumentParsed:
		return "Document parsed: " + r.Path
	case KindReportGenerated:
		return "Report generated: " + r.Path
	case KindImageGenerated:
		return "Image generated: " + r.Path
	case KindFileUploaded:
		return "File uploaded: " + r.URL
	case KindScheduleSet:
		return "Schedule set: " + r.Expr
	case KindWebhookTriggered:
		return "Webhook triggered (no URL provided)"
	case KindNotification:
		return r.Text
	case KindError:
		if r.Err == "" {
			return "Error: unknown"
		}
		return r.Err
	default: // KindAIText
		return r.Text
	}
}

// IsError reports whether the result is a failure sentinel.
func (r Result) IsError() bool { return r.Kind == KindError }
