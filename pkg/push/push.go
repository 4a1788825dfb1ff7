package push

import (
	"context"
	"fmt"

	"sentry-backend/pkg/fcm"
)

// Notification is a provider-neutral push message
type Notification struct {
	Title     string
	Body      string
	Data      map[string]string
	Priority  string // "high" or "normal"
	ChannelID string // Android notification channel
}

// Sender delivers one push message to one token. Implementations return an
// error on any transport failure or non-ok provider status; callers decide
// whether that failure matters.
type Sender interface {
	Send(ctx context.Context, token string, n Notification) error
}

// ProviderType represents the push provider type
type ProviderType string

const (
	ProviderExpo ProviderType = "expo"
	ProviderFCM  ProviderType = "fcm"
)

// Config holds push provider configuration
type Config struct {
	Provider ProviderType

	// Expo config
	ExpoPushURL string

	// FCM config
	FirebaseCredentials string
}

// NewSender creates a Sender based on the config.
// This is the factory function - switch push provider by changing config.Provider
func NewSender(cfg Config) (Sender, error) {
	switch cfg.Provider {
	case ProviderFCM:
		client, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			return nil, err
		}
		return &fcmSender{client: client}, nil

	case ProviderExpo, "":
		return NewExpoClient(cfg.ExpoPushURL), nil

	default:
		return nil, fmt.Errorf("unknown push provider %q", cfg.Provider)
	}
}

// fcmSender adapts the firebase client to the Sender interface
type fcmSender struct {
	client *fcm.Client
}

func (s *fcmSender) Send(ctx context.Context, token string, n Notification) error {
	return s.client.SendToDevice(ctx, token, fcm.NotificationData{
		Title:     n.Title,
		Body:      n.Body,
		Data:      n.Data,
		Priority:  n.Priority,
		ChannelID: n.ChannelID,
	})
}
