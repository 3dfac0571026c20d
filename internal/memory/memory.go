package memory

import (
	"context"
	"encoding/json"
	"strings"
)

// Role tags one side of a conversation turn. It is decided at construction
// and carried alongside the text, never inferred from a runtime type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is the bounded, ordered turn history for one (owner, user)
// pair. Only the most recent Window turns are retained; older turns drop in
// FIFO order.
type Conversation struct {
	Turns  []Turn
	Window int
}

func NewConversation(window int) *Conversation {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Conversation{Window: window}
}

// Append adds one turn and trims to the window.
func (c *Conversation) Append(role Role, text string) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text})
	c.Trim()
}

// Trim discards the oldest turns beyond the window.
func (c *Conversation) Trim() {
	if c.Window > 0 && len(c.Turns) > c.Window {
		c.Turns = c.Turns[len(c.Turns)-c.Window:]
	}
}

const (
	// DefaultWindow is the retained turn count per conversation key.
	DefaultWindow = 10

	// keyPrefix namespaces conversation keys away from unrelated data in
	// the durable tier.
	keyPrefix = "agent_memory:"
)

// Key builds the composite conversation key for an (owner, user) pair.
func Key(ownerID, userID string) string {
	return keyPrefix + ownerID + ":" + userID
}

// TrimKeyPrefix strips the namespace prefix from a stored key.
func TrimKeyPrefix(key string) string {
	return strings.TrimPrefix(key, keyPrefix)
}

// MarshalTurns serializes a turn list for the durable tier.
func MarshalTurns(turns []Turn) ([]byte, error) {
	return json.Marshal(turns)
}

// UnmarshalTurns restores a turn list, preserving order.
func UnmarshalTurns(data []byte) ([]Turn, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// Store is the contract both memory tiers satisfy. Get returns (nil, nil)
// when no history exists for the key. Keys lists stored keys under an owner,
// or every conversation key when ownerID is empty.
type Store interface {
	Get(ctx context.Context, key string) ([]Turn, error)
	Save(ctx context.Context, key string, turns []Turn) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, ownerID string) ([]string, error)
	Name() string
}
