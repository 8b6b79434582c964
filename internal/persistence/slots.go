package persistence

import (
	"encoding/base64"
	"fmt"
	"sync"
)

// Slots is a durable key-value environment holding one snapshot per key.
type Slots interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, data []byte) error
}

// ValueStore is the subset of the host settings database used by SettingsSlots.
type ValueStore interface {
	GetValue(key string) (string, bool, error)
	SetSetting(key, value string) error
}

// SettingsSlots keeps snapshots as base64 text in the settings table.
type SettingsSlots struct {
	values ValueStore
}

func NewSettingsSlots(values ValueStore) *SettingsSlots {
	return &SettingsSlots{values: values}
}

func (s *SettingsSlots) Get(key string) ([]byte, bool, error) {
	encoded, ok, err := s.values.GetValue(key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	if !ok || encoded == "" {
		return nil, false, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("slot %s is not valid base64: %w", key, err)
	}
	return data, true, nil
}

func (s *SettingsSlots) Put(key string, data []byte) error {
	if err := s.values.SetSetting(key, base64.StdEncoding.EncodeToString(data)); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

// MemorySlots keeps snapshots in process memory. Used by the CLI when no
// host database is wanted and by tests.
type MemorySlots struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: make(map[string][]byte)}
}

func (m *MemorySlots) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *MemorySlots) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.slots[key] = stored
	return nil
}
