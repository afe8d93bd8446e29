// Package credential resolves per-service credentials for a single
// engine run: a decrypted value from the user's stored record, falling
// back to a fixed process-environment mapping, falling back to empty.
//
// This is the read path only — storage, rotation, and audit logging of
// credentials live behind the encrypted credential vault, which spec.md
// places out of this module's scope; Store is the seam that vault would
// satisfy.
package credential

import (
	"context"
	"os"
	"sync"
)

// Twilio bundles the three Twilio fields the spec resolves together.
type Twilio struct {
	SID   string
	Token string
	Phone string
}

// Twitter bundles the four-field OAuth1 credential quad.
type Twitter struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
}

// Store is the decrypted-credential lookup a Broker consults before
// falling back to the environment. Grounded on the shape of
// internal/credential/service.go's read accessors, trimmed to the
// single ValidateAndGet-style lookup this spec's broker needs — no
// rotation, versioning, or access-log side effects, since those belong
// to the vault this module treats as an external dependency.
type Store interface {
	// Get returns the decrypted value for the named credential under
	// the given user id, or "" if the user has no such credential.
	Get(ctx context.Context, userID, name string) (string, error)
}

// NoStore is a Store that never has a user credential, so every
// accessor falls straight through to the environment. Used when a run
// has no user id.
type NoStore struct{}

func (NoStore) Get(context.Context, string, string) (string, error) { return "", nil }

// envFallback is the authoritative mapping from spec §4.2.
var envFallback = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"google":     "GOOGLE_API_KEY",
	"discord":    "SOCIAL_MEDIA_TEST_WEBHOOK",
	"github":     "GITHUB_TOKEN",
	"anthropic":  "ANTHROPIC_API_KEY",
	"twilio_sid":   "TWILIO_ACCOUNT_SID",
	"twilio_token": "TWILIO_AUTH_TOKEN",
	"twilio_phone": "TWILIO_PHONE_NUMBER",
	"stability":  "STABILITY_API_KEY",
	"twitter_key":            "TWITTER_API_KEY",
	"twitter_secret":         "TWITTER_API_SECRET",
	"twitter_access_token":   "TWITTER_ACCESS_TOKEN",
	"twitter_access_secret":  "TWITTER_ACCESS_TOKEN_SECRET",
	"linkedin":   "LINKEDIN_ACCESS_TOKEN",
	"instagram":  "INSTAGRAM_ACCESS_TOKEN",
	"sendgrid":      "SENDGRID_API_KEY",
	"mailgun_domain": "MAILGUN_DOMAIN",
	"mailgun_apikey": "MAILGUN_API_KEY",
}

// Email bundles the provider credentials the email executor may need,
// beyond the SMTP settings config.Config already carries.
type Email struct {
	SendGridAPIKey string
	MailgunDomain  string
	MailgunAPIKey  string
}

// Broker resolves service credentials for one engine run: user record
// first, then environment, then empty. Resolved values are cached for
// the broker's lifetime (one run) — per spec §4.2 and the teacher's
// request-scoped Injector construction in executor.go, never longer,
// so a rotated key is never served stale beyond the run already in
// flight (spec §9, "Credential broker caching").
type Broker struct {
	store  Store
	userID string

	mu    sync.Mutex
	cache map[string]string
}

// NewBroker constructs a Broker for one run. userID may be empty, in
// which case every accessor resolves straight from the environment.
func NewBroker(store Store, userID string) *Broker {
	if store == nil {
		store = NoStore{}
	}
	return &Broker{store: store, userID: userID, cache: make(map[string]string)}
}

func (b *Broker) resolve(ctx context.Context, name string) string {
	b.mu.Lock()
	if v, ok := b.cache[name]; ok {
		b.mu.Unlock()
		return v
	}
	b.mu.Unlock()

	var value string
	if b.userID != "" {
		if v, err := b.store.Get(ctx, b.userID, name); err == nil && v != "" {
			value = v
		}
	}
	if value == "" {
		if envKey, ok := envFallback[name]; ok {
			value = os.Getenv(envKey)
		}
	}

	b.mu.Lock()
	b.cache[name] = value
	b.mu.Unlock()
	return value
}

func (b *Broker) OpenAI(ctx context.Context) string     { return b.resolve(ctx, "openai") }
func (b *Broker) OpenRouter(ctx context.Context) string { return b.resolve(ctx, "openrouter") }
func (b *Broker) Google(ctx context.Context) string     { return b.resolve(ctx, "google") }
func (b *Broker) Discord(ctx context.Context) string    { return b.resolve(ctx, "discord") }
func (b *Broker) GitHub(ctx context.Context) string     { return b.resolve(ctx, "github") }
func (b *Broker) Anthropic(ctx context.Context) string  { return b.resolve(ctx, "anthropic") }
func (b *Broker) Stability(ctx context.Context) string  { return b.resolve(ctx, "stability") }
func (b *Broker) LinkedIn(ctx context.Context) string   { return b.resolve(ctx, "linkedin") }
func (b *Broker) Instagram(ctx context.Context) string  { return b.resolve(ctx, "instagram") }

func (b *Broker) Twilio(ctx context.Context) Twilio {
	return Twilio{
		SID:   b.resolve(ctx, "twilio_sid"),
		Token: b.resolve(ctx, "twilio_token"),
		Phone: b.resolve(ctx, "twilio_phone"),
	}
}

func (b *Broker) Email(ctx context.Context) Email {
	return Email{
		SendGridAPIKey: b.resolve(ctx, "sendgrid"),
		MailgunDomain:  b.resolve(ctx, "mailgun_domain"),
		MailgunAPIKey:  b.resolve(ctx, "mailgun_apikey"),
	}
}

func (b *Broker) TwitterCreds(ctx context.Context) Twitter {
	return Twitter{
		APIKey:            b.resolve(ctx, "twitter_key"),
		APISecret:         b.resolve(ctx, "twitter_secret"),
		AccessToken:       b.resolve(ctx, "twitter_access_token"),
		AccessTokenSecret: b.resolve(ctx, "twitter_access_secret"),
	}
}
