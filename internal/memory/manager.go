package memory

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Manager owns the per-(owner, user) conversation lifecycle. The active tier
// is chosen once at construction: when the durable tier answers the startup
// probe, every operation uses it; otherwise everything transparently runs on
// the in-process fallback tier for the life of the process.
type Manager struct {
	store   Store
	durable *RedisStore
	window  int
	logger  *zap.Logger
}

func NewManager(redisURL string, window int, logger *zap.Logger) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}

	m := &Manager{window: window, logger: logger}

	durable, err := NewRedisStore(redisURL)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = durable.Ping(ctx)
	}
	if err != nil {
		logger.Warn("Redis unavailable, conversation memory will not survive restarts",
			zap.Error(err))
		m.store = NewInMemoryStore()
		return m
	}

	logger.Info("Connected to Redis for conversation memory")
	m.durable = durable
	m.store = durable
	return m
}

// newManagerWithStore wires an explicit tier; used by tests.
func newManagerWithStore(store Store, durable *RedisStore, window int, logger *zap.Logger) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{store: store, durable: durable, window: window, logger: logger}
}

// Available reports whether the durable tier was selected at startup.
func (m *Manager) Available() bool {
	return m.durable != nil
}

// Get loads the conversation for a key, creating an empty one lazily. The
// window bound is applied on every load regardless of tier. A durable-tier
// read error degrades to a fresh conversation rather than failing the
// request.
func (m *Manager) Get(ctx context.Context, ownerID, userID string) *Conversation {
	conv := NewConversation(m.window)

	turns, err := m.store.Get(ctx, Key(ownerID, userID))
	if err != nil {
		m.logger.Error("Failed to load conversation memory",
			zap.Error(err),
			zap.String("owner_id", ownerID),
			zap.String("user_id", userID))
		return conv
	}

	conv.Turns = turns
	conv.Trim()
	return conv
}

// Save persists the conversation, renewing the durable tier's expiry.
func (m *Manager) Save(ctx context.Context, ownerID, userID string, conv *Conversation) bool {
	if err := m.store.Save(ctx, Key(ownerID, userID), conv.Turns); err != nil {
		m.logger.Error("Failed to save conversation memory",
			zap.Error(err),
			zap.String("owner_id", ownerID),
			zap.String("user_id", userID))
		return false
	}
	return true
}

// Clear removes one conversation, or every conversation of the owner when
// userID is empty. The bulk form scans keys by prefix and deletes them one
// at a time; writes racing the scan may survive it.
func (m *Manager) Clear(ctx context.Context, ownerID, userID string) bool {
	if userID != "" {
		deleted, err := m.store.Delete(ctx, Key(ownerID, userID))
		if err != nil {
			m.logger.Error("Failed to clear conversation memory",
				zap.Error(err),
				zap.String("owner_id", ownerID),
				zap.String("user_id", userID))
			return false
		}
		return deleted
	}

	keys, err := m.store.Keys(ctx, ownerID)
	if err != nil {
		m.logger.Error("Failed to scan conversation keys",
			zap.Error(err),
			zap.String("owner_id", ownerID))
		return false
	}

	cleared := false
	for _, key := range keys {
		deleted, err := m.store.Delete(ctx, key)
		if err != nil {
			m.logger.Error("Failed to delete conversation key",
				zap.Error(err),
				zap.String("key", key))
			continue
		}
		cleared = cleared || deleted
	}
	return cleared
}

// UserInfo describes one conversation's stored state.
type UserInfo struct {
	HasMemory    bool   `json:"has_memory"`
	MessageCount int    `json:"message_count"`
	MemoryWindow int    `json:"memory_window"`
	Storage      string `json:"storage"`
	RecentTurns  []Turn `json:"recent_turns,omitempty"`
}

// OwnerInfo describes every conversation stored for one owner.
type OwnerInfo struct {
	Conversations []string `json:"conversations"`
	Total         int      `json:"total"`
	MemoryWindow  int      `json:"memory_window"`
	Storage       string   `json:"storage"`
}

// GlobalInfo summarizes the whole memory namespace.
type GlobalInfo struct {
	TotalConversations int      `json:"total_conversations"`
	Conversations      []string `json:"conversations"`
	MemoryWindow       int      `json:"memory_window"`
	Storage            string   `json:"storage"`
}

const recentTurnLimit = 5

func (m *Manager) Info(ctx context.Context, ownerID, userID string) UserInfo {
	info := UserInfo{
		MemoryWindow: m.window,
		Storage:      m.store.Name(),
	}

	turns, err := m.store.Get(ctx, Key(ownerID, userID))
	if err != nil {
		m.logger.Error("Failed to read conversation memory info",
			zap.Error(err),
			zap.String("owner_id", ownerID),
			zap.String("user_id", userID))
		return info
	}
	if len(turns) == 0 {
		return info
	}

	info.HasMemory = true
	info.MessageCount = len(turns)

	recent := turns
	if len(recent) > recentTurnLimit {
		recent = recent[len(recent)-recentTurnLimit:]
	}
	for _, t := range recent {
		text := t.Text
		if len(text) > 100 {
			text = text[:100] + "..."
		}
		info.RecentTurns = append(info.RecentTurns, Turn{Role: t.Role, Text: text})
	}
	return info
}

func (m *Manager) InfoByOwner(ctx context.Context, ownerID string) OwnerInfo {
	info := OwnerInfo{
		MemoryWindow: m.window,
		Storage:      m.store.Name(),
	}

	keys, err := m.store.Keys(ctx, ownerID)
	if err != nil {
		m.logger.Error("Failed to scan conversation keys",
			zap.Error(err),
			zap.String("owner_id", ownerID))
		return info
	}

	for _, key := range keys {
		info.Conversations = append(info.Conversations, TrimKeyPrefix(key))
	}
	info.Total = len(info.Conversations)
	return info
}

func (m *Manager) GlobalInfo(ctx context.Context) GlobalInfo {
	info := GlobalInfo{
		MemoryWindow: m.window,
		Storage:      m.store.Name(),
	}

	keys, err := m.store.Keys(ctx, "")
	if err != nil {
		m.logger.Error("Failed to scan conversation keys", zap.Error(err))
		return info
	}

	for _, key := range keys {
		info.Conversations = append(info.Conversations, TrimKeyPrefix(key))
	}
	info.TotalConversations = len(info.Conversations)
	return info
}

// RedisInfo reports durable-tier diagnostics, regardless of which tier is
// active.
func (m *Manager) RedisInfo(ctx context.Context) ServerInfo {
	if m.durable == nil {
		return ServerInfo{Connected: false, Error: "redis não conectado"}
	}
	return m.durable.Info(ctx)
}
