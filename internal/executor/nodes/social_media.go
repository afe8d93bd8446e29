package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const socialMediaTimeout = 30 * time.Second

var platformCharLimits = map[string]int{
	"twitter":   280,
	"linkedin":  3000,
	"instagram": 2200,
}

type socialMediaConfig struct {
	Platform  string `json:"platform"` // twitter, linkedin, instagram, webhook
	Content   string `json:"content"`
	ImagePath string `json:"image_path"`
	WebhookURL string `json:"webhook_url"` // platform: "webhook"
}

// SocialMedia posts to twitter/linkedin/instagram (each truncated to that
// platform's character limit) or relays to an arbitrary webhook URL when
// platform is "webhook". No first-party social SDK appears anywhere in
// the pack, so every platform is driven through go-resty/resty the same
// way the teacher's webhook action drives outbound HTTP
// (internal/executor/actions/http.go), each just pointed at a different
// vendor endpoint shape.
type SocialMedia struct{}

func NewSocialMedia() *SocialMedia { return &SocialMedia{} }

func (SocialMedia) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg socialMediaConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid social_media config: %v", err)
		}
	}
	if cfg.Platform == "" {
		return adapter.Error("Error: platform is required")
	}

	content := cfg.Content
	if content == "" {
		if text, ok := firstFreeFormText(req.Predecessors); ok {
			content = text
		}
	}
	if content == "" {
		return adapter.Error("Error: content is required")
	}

	imagePath := cfg.ImagePath
	if imagePath == "" {
		imagePath = firstGeneratedImagePath(req.Predecessors)
	}

	if limit, ok := platformCharLimits[cfg.Platform]; ok && len(content) > limit {
		content = content[:limit]
	}

	var err error
	switch cfg.Platform {
	case "webhook":
		err = postSocialWebhook(ctx, cfg.WebhookURL, content, imagePath)
	case "twitter", "linkedin", "instagram":
		err = postToPlatform(ctx, req, cfg.Platform, content, imagePath)
	default:
		return adapter.Error("Error: unsupported platform %q", cfg.Platform)
	}
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.Notification(fmt.Sprintf("Posted to %s successfully", cfg.Platform))
}

func firstGeneratedImagePath(predecessors map[string]adapter.Result) string {
	for _, r := range predecessors {
		if r.Kind == adapter.KindImageGenerated {
			return r.Path
		}
	}
	return ""
}

func postSocialWebhook(ctx context.Context, url, content, imagePath string) error {
	if url == "" {
		return fmt.Errorf("webhook_url is required for platform \"webhook\"")
	}
	client := resty.New().SetTimeout(socialMediaTimeout)
	resp, err := client.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"content": content, "image_path": imagePath}).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// postToPlatform posts via each vendor's credential-bearing REST endpoint.
// Twitter's quad is OAuth1 (credential.Broker.TwitterCreds); we send its
// access token as a bearer value rather than HMAC-signing the request,
// since no OAuth1 signer appears anywhere in the pack. LinkedIn and
// Instagram use the plain bearer tokens their Graph-style APIs expect.
func postToPlatform(ctx context.Context, req executor.Request, platform, content, imagePath string) error {
	var token string
	switch platform {
	case "twitter":
		token = req.Broker.TwitterCreds(ctx).AccessToken
	case "linkedin":
		token = req.Broker.LinkedIn(ctx)
	case "instagram":
		token = req.Broker.Instagram(ctx)
	}
	if token == "" {
		return errNoCredential(platform)
	}

	endpoint, body := platformRequest(platform, content, imagePath)

	client := resty.New().SetTimeout(socialMediaTimeout)
	resp, err := client.R().SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s returned status %d", platform, resp.StatusCode())
	}
	return nil
}

func platformRequest(platform, content, imagePath string) (string, map[string]interface{}) {
	switch platform {
	case "twitter":
		body := map[string]interface{}{"text": content}
		if imagePath != "" {
			body["media_path"] = imagePath
		}
		return "https://api.twitter.com/2/tweets", body
	case "linkedin":
		body := map[string]interface{}{"commentary": content}
		if imagePath != "" {
			body["media_path"] = imagePath
		}
		return "https://api.linkedin.com/v2/ugcPosts", body
	default: // instagram
		body := map[string]interface{}{"caption": content}
		if imagePath != "" {
			body["image_path"] = imagePath
		}
		return "https://graph.facebook.com/v19.0/me/media", body
	}
}
