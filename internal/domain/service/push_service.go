package service

import (
	"context"
	"errors"
)

// ErrUnregisteredToken is returned by a PushService when the messaging
// provider reports a token as invalid or unregistered. Callers prune the
// corresponding device; every other send error is transient and is logged
// rather than propagated.
var ErrUnregisteredToken = errors.New("push token invalid or unregistered")

// PushService defines the interface for push notification delivery.
type PushService interface {
	// SendBatch sends push notifications to multiple device tokens.
	// Returns success count, failure count, list of invalid tokens, and error.
	SendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error)

	// SendSingle sends a push notification to a single device token.
	// Returns ErrUnregisteredToken (possibly wrapped) for prunable tokens.
	SendSingle(ctx context.Context, token, title, body string, data map[string]string) error
}
