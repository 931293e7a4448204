package alert

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/vanshika/orders/backend/internal/domain"
)

type channelMessenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordSender posts alerts into a Discord channel.
type DiscordSender struct {
	session   channelMessenger
	closer    func() error
	channelID string
}

// NewDiscordSender opens a bot session with token.
func NewDiscordSender(token, channelID string) (*DiscordSender, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("discord alert sender requires a bot token and channel id")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &DiscordSender{session: session, closer: session.Close, channelID: channelID}, nil
}

// Send implements Sender.
func (s *DiscordSender) Send(ctx context.Context, tx *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAlertDeliveryFailed, err)
	}
	if _, err := s.session.ChannelMessageSend(s.channelID, formatDiscord(tx), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: discord: %v", domain.ErrAlertDeliveryFailed, err)
	}
	return nil
}

// Close ends the bot session.
func (s *DiscordSender) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func formatDiscord(tx *domain.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Fraud alert** for transaction %d\n", tx.ID)
	fmt.Fprintf(&b, "User: %s\n", tx.UserID)
	fmt.Fprintf(&b, "Payment method: %s\n", tx.PaymentMethod)
	fmt.Fprintf(&b, "Started: %s", tx.StartTime.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}
