package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Greeting opens every chat.
const Greeting = "Hello! I'm your Bodrum wedding specialist. How can I help you plan your big day on Oct 10, 2026?"

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// Role is who wrote a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat line.
type Message struct {
	Role Role
	Text string
}

// Adviser is what a Chat asks. *Advisor implements it.
type Adviser interface {
	Advice(ctx context.Context, query, contextData string) string
}

// Chat keeps a conversation with the advisor. Each question is sent on its
// own; the history is for display.
type Chat struct {
	adviser  Adviser
	greeting string
	// ContextFunc, when set, supplies the planning context for each question.
	ContextFunc func() string

	mu       sync.Mutex
	messages []Message
}

// NewChat starts a chat with greeting as the first assistant message.
// An empty greeting uses Greeting.
func NewChat(a Adviser, greeting string) *Chat {
	if greeting == "" {
		greeting = Greeting
	}
	c := &Chat{adviser: a, greeting: greeting}
	c.Reset()
	return c
}

// Send asks a question and appends both sides to the history.
func (c *Chat) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	c.messages = append(c.messages, Message{Role: RoleUser, Text: text})
	c.mu.Unlock()

	var contextData string
	if c.ContextFunc != nil {
		contextData = c.ContextFunc()
	}
	reply := Message{Role: RoleAssistant, Text: c.adviser.Advice(ctx, text, contextData)}

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.mu.Unlock()
	return reply, nil
}

// Messages returns a copy of the history.
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reset clears the history back to the greeting.
func (c *Chat) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = []Message{{Role: RoleAssistant, Text: c.greeting}}
}
