package testutil

import (
	"context"
	"sync"

	"github.com/Dias221467/shadowmeet/internal/chat"
	"github.com/Dias221467/shadowmeet/pkg/email"
)

// Mailer records outgoing messages.
type Mailer struct {
	mu   sync.Mutex
	sent []email.Message

	// Err, when set, fails every send.
	Err error
}

func (m *Mailer) Send(ctx context.Context, msg email.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of every delivered message.
func (m *Mailer) Sent() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

// Last returns the most recent message.
func (m *Mailer) Last() (email.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return email.Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// ChatProvider records upserted users and mints predictable tokens.
type ChatProvider struct {
	mu       sync.Mutex
	Upserted []chat.User

	UpsertErr error
	TokenErr  error
}

func (c *ChatProvider) UpsertUser(ctx context.Context, user chat.User) error {
	if c.UpsertErr != nil {
		return c.UpsertErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Upserted = append(c.Upserted, user)
	return nil
}

func (c *ChatProvider) CreateToken(userID string) (string, error) {
	if c.TokenErr != nil {
		return "", c.TokenErr
	}
	return "chat-token-" + userID, nil
}

func (c *ChatProvider) APIKey() string { return "test-key" }

// ObjectStore keeps uploaded objects in memory.
type ObjectStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error
}

func (o *ObjectStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if o.Err != nil {
		return "", o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Objects == nil {
		o.Objects = make(map[string][]byte)
	}
	o.Objects[key] = data
	return "https://cdn.test/" + key, nil
}

// Publisher records published events by queue name.
type Publisher struct {
	mu     sync.Mutex
	Events map[string][]any
	Err    error
}

func (p *Publisher) Publish(ctx context.Context, queue string, event any) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Events == nil {
		p.Events = make(map[string][]any)
	}
	p.Events[queue] = append(p.Events[queue], event)
	return nil
}

// Count returns how many events were published to queue.
func (p *Publisher) Count(queue string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events[queue])
}
