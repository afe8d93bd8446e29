// Package workflow holds the data model shared by the execution core:
// nodes, edges and workflows, plus the graph validator (Order).
package workflow

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// NodeKind is the closed set of node variants the engine knows how to route.
type NodeKind string

const (
	NodeGPT              NodeKind = "gpt"
	NodeLlama            NodeKind = "llama"
	NodeGemini           NodeKind = "gemini"
	NodeClaude           NodeKind = "claude"
	NodeMistral          NodeKind = "mistral"
	NodeEmail            NodeKind = "email"
	NodeWebhook          NodeKind = "webhook"
	NodeSMS              NodeKind = "sms"
	NodeWhatsApp         NodeKind = "whatsapp"
	NodeTwilio           NodeKind = "twilio"
	NodeDiscord          NodeKind = "discord"
	NodeGoogleSheets     NodeKind = "google_sheets"
	NodeSchedule         NodeKind = "schedule"
	NodeFileUpload       NodeKind = "file_upload"
	NodeImageGeneration  NodeKind = "image_generation"
	NodeDocumentParser   NodeKind = "document_parser"
	NodeReportGenerator  NodeKind = "report_generator"
	NodeSocialMedia      NodeKind = "social_media"
)

// llmKinds is the subset of kinds routed through the LLM executor.
var llmKinds = map[NodeKind]bool{
	NodeGPT:     true,
	NodeLlama:   true,
	NodeGemini:  true,
	NodeClaude:  true,
	NodeMistral: true,
}

// IsLLM reports whether kind is one of the model-calling variants.
func (k NodeKind) IsLLM() bool { return llmKinds[k] }

// Node is a unit of work in a workflow.
type Node struct {
	ID       string          `json:"id"`
	Kind     NodeKind        `json:"kind" validate:"required,oneof=gpt llama gemini claude mistral email webhook sms whatsapp twilio discord google_sheets schedule file_upload image_generation document_parser report_generator social_media"`
	Config   json.RawMessage `json:"config"`
	Position json.RawMessage `json:"position,omitempty"`
}

// Edge is a dependency from Source to Target: Target may use Source's result.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Workflow is an unordered set of nodes and edges forming a DAG.
type Workflow struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ErrEmptyID is returned when a node's id is blank.
var ErrEmptyID = errors.New("node id must not be empty")

// ErrDuplicateID is returned when two sibling nodes share an id.
var ErrDuplicateID = errors.New("duplicate node id")

// Validate checks the structural invariants from the data model: node ids
// are non-empty and unique among siblings. Edge endpoint and cycle checks
// live in the graph validator (see Order).
func (w Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if n.ID == "" {
			return ErrEmptyID
		}
		if seen[n.ID] {
			return ErrDuplicateID
		}
		seen[n.ID] = true
	}

	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	return nil
}

// NodeByID returns the node with the given id, if present.
func (w Workflow) NodeByID(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
