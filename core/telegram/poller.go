package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/whoisbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// AllowedUpdates lists the update kinds the bot subscribes to.
var AllowedUpdates = []string{"message", "callback_query", "my_chat_member"}

// WebhookOptions declares webhook settings.
type WebhookOptions struct {
	// URL is the public base URL; updates are delivered to URL/<token>.
	URL   string
	Token string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller returns a Telebot poller based on provided options. The webhook
// poller does not listen itself; updates reach it through the HTTP server of
// RunTelegram.
func BuildPoller(opts PollerOptions) tele.Poller {
	runMode := strings.ToLower(strings.TrimSpace(opts.RunMode))
	if runMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			AllowedUpdates: AllowedUpdates,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: WebhookURL(opts.Webhook.URL, opts.Webhook.Token)},
		}
	}

	timeout := defaultLongPollTimeout
	if opts.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: AllowedUpdates}
}

// WebhookPath is the local path webhook updates are posted to.
func WebhookPath(token string) string {
	return "/" + token
}

// WebhookURL joins the public base URL and the token path.
func WebhookURL(base, token string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + WebhookPath(token)
}
