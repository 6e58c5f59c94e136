// Package queue defines domain events and publishes them to RabbitMQ.
package queue

import "context"

// Queue names double as routing keys on the default exchange.
const (
	UserRegistered        = "user.registered"
	FriendRequestSent     = "friend_request.sent"
	FriendRequestAccepted = "friend_request.accepted"
)

// UserRegisteredEvent is published after an account is created by either
// registration flow.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Method       string `json:"method"`
	RegisteredAt string `json:"registered_at"`
}

// FriendRequestEvent is published when a request is sent or accepted.
type FriendRequestEvent struct {
	RequestID   string `json:"request_id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Status      string `json:"status"`
	OccurredAt  string `json:"occurred_at"`
}

// Publisher delivers an event payload to the named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
