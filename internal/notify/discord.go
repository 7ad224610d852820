package notify

import (
	"context"
	"net/http"
	"strings"
)

// Discord embed accent colors per tier prefix in the alert title.
const (
	colorTier1   = 0x2ecc71 // green
	colorTier2   = 0x3498db // blue
	colorLean    = 0xf1c40f // yellow
	colorDefault = 0x95a5a6 // grey
)

// DiscordSender delivers alerts to a Discord webhook as colored embeds.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender creates a DiscordSender for the given webhook URL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: senderTimeout},
	}
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Send posts the alert as an embed. The embed color reflects the pick tier
// when the title carries one; Discord answers 204 on success.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	return postJSON(ctx, d.client, "discord", d.webhookURL, discordPayload{
		Embeds: []discordEmbed{{
			Title:       title,
			Description: message,
			Color:       tierColor(title),
		}},
	})
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string { return "discord" }

func tierColor(title string) int {
	switch {
	case strings.HasPrefix(title, "TIER_1"):
		return colorTier1
	case strings.HasPrefix(title, "TIER_2"):
		return colorTier2
	case strings.HasPrefix(title, "LEAN"):
		return colorLean
	default:
		return colorDefault
	}
}
