// Package notify delivers best-effort milestone notifications (finished
// imports, completed technologies) to configured Slack and Discord
// webhooks. Errors are logged, never returned: a missed ping must not
// fail the mutation that triggered it.
package notify

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
	"github.com/techtrail/techtrail/internal/config"
)

// slackPoster abstracts the Slack webhook call, enabling test fakes.
type slackPoster func(ctx context.Context, url string, msg *slackapi.WebhookMessage) error

// discordPoster abstracts the Discord webhook call, enabling test fakes.
type discordPoster func(id, token, content string) error

// Notifier fans one message out to every configured webhook.
type Notifier struct {
	cfg     config.NotifyConfig
	enabled func() bool

	postSlack   slackPoster
	postDiscord discordPoster
}

// New builds a Notifier. enabled is consulted per message so the
// notifications setting applies without restarting.
func New(cfg config.NotifyConfig, enabled func() bool) *Notifier {
	n := &Notifier{
		cfg:       cfg,
		enabled:   enabled,
		postSlack: slackapi.PostWebhookContext,
	}
	n.postDiscord = func(id, token, content string) error {
		session, err := discordgo.New("")
		if err != nil {
			return err
		}
		_, err = session.WebhookExecute(id, token, false, &discordgo.WebhookParams{Content: content})
		return err
	}
	return n
}

// Send delivers text to all configured targets.
func (n *Notifier) Send(ctx context.Context, text string) {
	if n.enabled != nil && !n.enabled() {
		return
	}
	if n.cfg.SlackWebhook != "" {
		msg := &slackapi.WebhookMessage{Text: text}
		if err := n.postSlack(ctx, n.cfg.SlackWebhook, msg); err != nil {
			log.Printf("notify: slack webhook: %v", err)
		}
	}
	if n.cfg.DiscordWebhookID != "" {
		if err := n.postDiscord(n.cfg.DiscordWebhookID, n.cfg.DiscordToken, text); err != nil {
			log.Printf("notify: discord webhook: %v", err)
		}
	}
}
