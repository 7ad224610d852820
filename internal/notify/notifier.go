// Package notify delivers pick alerts to one or more channels (Discord,
// Telegram). Alerts can be filtered by pick tier so operators only hear about
// the confidence levels they act on.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/epinal/sharpline/internal/domain"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches pick alerts to one or more Senders. It maintains a set
// of allowed tiers; NotifyPick only forwards picks whose tier is in the
// allowed set, while NotifyAll bypasses the filter.
type Notifier struct {
	senders []Sender
	tiers   map[domain.Tier]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders. Only
// picks whose tier appears in the tiers slice will be forwarded by NotifyPick.
// If tiers is empty, every tier is allowed.
func NewNotifier(senders []Sender, tiers []string, logger *slog.Logger) *Notifier {
	allowed := make(map[domain.Tier]bool, len(tiers))
	for _, t := range tiers {
		allowed[domain.Tier(strings.ToUpper(strings.TrimSpace(t)))] = true
	}
	return &Notifier{
		senders: senders,
		tiers:   allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// NotifyPick sends an alert for one pick to all senders, subject to the tier
// filter. If no tiers were configured (empty list), all picks pass.
func (n *Notifier) NotifyPick(ctx context.Context, pick domain.Pick) error {
	if len(n.tiers) > 0 && !n.tiers[pick.Tier] {
		n.logger.DebugContext(ctx, "pick filtered out",
			slog.String("pick_id", pick.ID),
			slog.String("tier", string(pick.Tier)),
		)
		return nil
	}

	title := fmt.Sprintf("%s %s %s", pick.Tier, strings.ToUpper(string(pick.Market)), pick.Game)
	return n.dispatch(ctx, title, FormatPick(pick))
}

// NotifyAll sends a notification to all senders regardless of tier. Used for
// operational alerts (pipeline failures, startup) rather than picks.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// FormatPick renders a pick as a human-readable alert body.
func FormatPick(p domain.Pick) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pick: %s\n", p.Pick)
	fmt.Fprintf(&b, "Confidence: %.0f%% (%s)\n", p.Confidence*100, p.Tier)
	if p.BestBook != "" {
		fmt.Fprintf(&b, "Best line: %s\n", p.BestBook)
	}
	if len(p.Signals) > 0 {
		names := make([]string, len(p.Signals))
		for i, s := range p.Signals {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "Signals: %s\n", strings.Join(names, ", "))
	}
	if p.Reasoning != "" {
		fmt.Fprintf(&b, "Why: %s", p.Reasoning)
	}
	return strings.TrimRight(b.String(), "\n")
}

// dispatch iterates over all senders and sends the notification. Errors from
// individual senders are collected and returned as a combined error; a single
// sender failure does not prevent delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
