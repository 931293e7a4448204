package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/gateway"
)

func fraudulentTransaction(t *testing.T) *domain.Transaction {
	t.Helper()
	tx := domain.NewTransaction(domain.TransactionRequest{
		Order:         json.RawMessage(`{"sku":"A1"}`),
		PaymentMethod: "paytm",
	}, 77, "user-77", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, tx.MarkFraudulent())
	require.NoError(t, tx.BeginAlert())
	return tx
}

func TestGatewaySender_PublishesEnvelope(t *testing.T) {
	var sent any
	s := NewGatewaySender(gateway.TransportFunc(func(_ context.Context, msg any) (map[string]any, error) {
		sent = msg
		return map[string]any{"ignored": true}, nil
	}))

	require.NoError(t, s.Send(context.Background(), fraudulentTransaction(t)))

	raw, err := json.Marshal(sent)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []any{"sms", "email"}, decoded["alertTypes"])
	msg := decoded["message"].(map[string]any)
	assert.EqualValues(t, 77, msg["transactionID"])
	assert.Equal(t, true, msg["fraudStatus"])
}

func TestGatewaySender_CustomTypes(t *testing.T) {
	var sent Message
	s := NewGatewaySender(gateway.TransportFunc(func(_ context.Context, msg any) (map[string]any, error) {
		sent = msg.(Message)
		return nil, nil
	}), "push")

	require.NoError(t, s.Send(context.Background(), fraudulentTransaction(t)))
	assert.Equal(t, []string{"push"}, sent.AlertTypes)
}

func TestGatewaySender_WrapsFailure(t *testing.T) {
	s := NewGatewaySender(gateway.TransportFunc(func(context.Context, any) (map[string]any, error) {
		return nil, errors.New("broker down")
	}))

	err := s.Send(context.Background(), fraudulentTransaction(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlertDeliveryFailed)
	assert.Contains(t, err.Error(), "broker down")
}

func TestLogSender_WritesWarning(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.Send(context.Background(), fraudulentTransaction(t)))
	assert.Contains(t, buf.String(), "fraud alert")
	assert.Contains(t, buf.String(), "transactionId=77")
	assert.Contains(t, buf.String(), "alertTypes=\"[sms email]\"")
}

func TestLogSender_UsesConfiguredTypes(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)), "push")

	require.NoError(t, s.Send(context.Background(), fraudulentTransaction(t)))
	assert.Contains(t, buf.String(), "alertTypes=[push]")
	assert.NotContains(t, buf.String(), "sms")
}

type stubMessenger struct {
	channel string
	content string
	err     error
}

func (s *stubMessenger) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.channel = channelID
	s.content = content
	if s.err != nil {
		return nil, s.err
	}
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func TestDiscordSender(t *testing.T) {
	stub := &stubMessenger{}
	s := &DiscordSender{session: stub, channelID: "chan-1"}

	require.NoError(t, s.Send(context.Background(), fraudulentTransaction(t)))
	assert.Equal(t, "chan-1", stub.channel)
	assert.Contains(t, stub.content, "transaction 77")
	assert.NoError(t, s.Close())

	stub.err = errors.New("rate limited")
	err := s.Send(context.Background(), fraudulentTransaction(t))
	assert.ErrorIs(t, err, domain.ErrAlertDeliveryFailed)
}

func TestNewDiscordSender_RequiresCredentials(t *testing.T) {
	_, err := NewDiscordSender("", "chan")
	assert.Error(t, err)
}
