package nodes

import (
	"github.com/SHXZ7/autofloww/internal/config"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// Register wires one Executor instance per workflow.NodeKind into reg,
// mirroring the teacher's actions.Registry population in
// cmd/autoflow/main.go but against the map[NodeKind]Executor design
// spec §9 calls for. The five LLM kinds share a single stateless LLM
// executor; sms/whatsapp/twilio share a single SMS executor that reads
// its own "mode" field.
func Register(reg *executor.Registry, cfg config.Config) {
	llm := NewLLM()
	reg.Register(workflow.NodeGPT, llm)
	reg.Register(workflow.NodeLlama, llm)
	reg.Register(workflow.NodeGemini, llm)
	reg.Register(workflow.NodeClaude, llm)
	reg.Register(workflow.NodeMistral, llm)

	sms := NewSMS()
	reg.Register(workflow.NodeSMS, sms)
	reg.Register(workflow.NodeWhatsApp, sms)
	reg.Register(workflow.NodeTwilio, sms)

	reg.Register(workflow.NodeEmail, NewEmail(cfg))
	reg.Register(workflow.NodeWebhook, NewWebhook())
	reg.Register(workflow.NodeDiscord, NewDiscord())
	reg.Register(workflow.NodeGoogleSheets, NewGoogleSheets())
	reg.Register(workflow.NodeSchedule, NewSchedule())
	reg.Register(workflow.NodeFileUpload, NewFileUpload())
	reg.Register(workflow.NodeImageGeneration, NewImageGeneration())
	reg.Register(workflow.NodeDocumentParser, NewDocumentParser())
	reg.Register(workflow.NodeReportGenerator, NewReportGenerator())
	reg.Register(workflow.NodeSocialMedia, NewSocialMedia())
}
