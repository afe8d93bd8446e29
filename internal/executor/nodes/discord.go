package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const (
	discordTimeout       = 10 * time.Second
	discordEmbedLimit    = 1500
	discordMaxEmbeds     = 10
	colorReport          = 3066993
	colorDocument        = 3447003
	colorImage           = 10181046
	colorAI              = 5814783
	colorNotification    = 3066993
	colorError           = 15158332
)

type discordConfig struct {
	URL      string                   `json:"webhook_url"`
	Message  string                   `json:"message"`
	Username string                   `json:"username"`
	Embeds   []discordgo.MessageEmbed `json:"embeds"`
}

// Discord posts to a Discord incoming webhook via discordgo's
// WebhookExecute, grounded on spec §4.3's embed-building rules (fixed
// color per predecessor kind, 1,500-char description cap, 10-embed max).
type Discord struct{}

func NewDiscord() *Discord { return &Discord{} }

func (Discord) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg discordConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid discord config: %v", err)
		}
	}
	if cfg.URL == "" {
		return adapter.Error("Error: webhook_url is required")
	}

	username := cfg.Username
	if username == "" {
		username = "AutoFlow Bot"
	}

	webhookID, token, err := parseDiscordWebhookURL(cfg.URL)
	if err != nil {
		return adapter.Error("Error: %v", err)
	}

	embeds := buildDiscordEmbeds(cfg, req.Predecessors)

	session, err := discordgo.New("")
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	session.Client.Timeout = discordTimeout

	params := &discordgo.WebhookParams{
		Content:  cfg.Message,
		Username: username,
		Embeds:   embeds,
	}
	if _, err := session.WebhookExecute(webhookID, token, false, params); err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.Notification("Posted to Discord successfully")
}

func parseDiscordWebhookURL(raw string) (id, token string, err error) {
	parts := strings.Split(strings.TrimRight(raw, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid discord webhook url: %s", raw)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// buildDiscordEmbeds implements spec §4.3's "up to 10 embeds, one per
// report/document/image/file/AI result plus an optional main message
// embed" rule, with the fixed colors table.
func buildDiscordEmbeds(cfg discordConfig, predecessors map[string]adapter.Result) []*discordgo.MessageEmbed {
	var embeds []*discordgo.MessageEmbed
	add := func(title, desc string, color int) {
		if len(embeds) >= discordMaxEmbeds {
			return
		}
		if len(desc) > discordEmbedLimit {
			desc = desc[:discordEmbedLimit]
		}
		embeds = append(embeds, &discordgo.MessageEmbed{Title: title, Description: desc, Color: color})
	}

	if cfg.Message != "" {
		add("AutoFlow Notification", cfg.Message, colorNotification)
	}

	cls := classifyPredecessors(predecessors)
	for _, r := range cls.reports {
		add("Report Generated", r.Path, colorReport)
	}
	for _, d := range cls.documents {
		add("Document Parsed", d.Path, colorDocument)
	}
	for _, im := range cls.images {
		add("Image Generated", im.Path, colorImage)
	}
	for _, u := range cls.uploads {
		add("File Uploaded", u.URL, colorDocument)
	}
	for _, text := range cls.aiTexts {
		add("AI Response", text, colorAI)
	}

	for _, r := range predecessors {
		if r.IsError() {
			add("Error", r.Err, colorError)
		}
	}

	return embeds
}
