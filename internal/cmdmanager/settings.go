package cmdmanager

import (
	"context"
	"errors"
	"strings"

	"github.com/intensifier/ishell/internal/event"
	"github.com/intensifier/ishell/internal/storage"
)

var (
	disabledKey = []string{"settings", "disabled"}
	historyKey  = []string{"settings", "history"}
)

func (m *Manager) loadSettings(ctx context.Context) {
	var disabled map[string]bool
	if err := m.store.Get(ctx, disabledKey, &disabled); err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.log.Error().Err(err).Msg("error reading disabled commands")
	}
	var history []string
	if err := m.store.Get(ctx, historyKey, &history); err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.log.Error().Err(err).Msg("error reading command history")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, off := range disabled {
		if off {
			m.disabled[name] = true
		}
	}
	m.history = history
	if len(m.history) > m.maxHistory {
		m.history = m.history[:m.maxHistory]
	}
}

func (m *Manager) disabledSnapshot() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.disabled))
	for k, v := range m.disabled {
		out[k] = v
	}
	return out
}

func (m *Manager) historySnapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.history...)
}

// persistAsync writes the current value of snapshot under path in the
// background. Writes are serialized and each reads the state at write
// time, so the last write always carries the latest state.
func (m *Manager) persistAsync(path []string, snapshot func() any) {
	m.persist.Add(1)
	go func() {
		defer m.persist.Done()
		m.persistMu.Lock()
		defer m.persistMu.Unlock()

		if err := m.store.Put(context.Background(), path, snapshot()); err != nil {
			m.log.Error().Err(err).Str("key", strings.Join(path, "/")).Msg("error persisting setting")
		}
	}()
}

// Wait blocks until pending settings writes completed.
func (m *Manager) Wait() {
	m.persist.Wait()
}

// CommandHistoryPush records input as the most recent history entry. An
// input equal to the current head, ignoring case, is not recorded again.
func (m *Manager) CommandHistoryPush(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	m.mu.Lock()
	if len(m.history) > 0 && strings.EqualFold(m.history[0], input) {
		m.mu.Unlock()
		return
	}
	m.history = append([]string{input}, m.history...)
	if len(m.history) > m.maxHistory {
		m.history = m.history[:m.maxHistory]
	}
	size := len(m.history)
	m.mu.Unlock()

	m.persistAsync(historyKey, func() any { return m.historySnapshot() })
	m.publish(event.HistoryUpdated, event.HistoryUpdatedData{Input: input, Size: size})
}

// CommandHistory returns the history, most recent first.
func (m *Manager) CommandHistory() []string {
	return m.historySnapshot()
}
