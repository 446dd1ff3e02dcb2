package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/go-sprite-forge/pkg/domain"
)

// DefaultKey は履歴を保存するエントリ名です。
const DefaultKey = "pixelForgeHistory"

// Store は生成結果の履歴です。新しい順に並び、ID は重複しません。
// 変更のたびに履歴全体を Storage に書き出します。
type Store struct {
	mu      sync.RWMutex
	storage Storage
	key     string
	items   []domain.GeneratedResult
}

// NewStore は Storage から履歴を読み込んで Store を返します。
// 保存データが壊れている場合はログに残して空の履歴から始めます。
func NewStore(storage Storage, key string) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if key == "" {
		key = DefaultKey
	}
	s := &Store{storage: storage, key: key}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	raw, err := s.storage.Get(s.key)
	if errors.Is(err, ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("履歴の読み込みに失敗しました: %w", err)
	}

	items, err := decode(raw)
	if err != nil {
		perr := &domain.PersistenceParseError{Key: s.key, Err: err}
		slog.Warn("保存済み履歴を破棄して空の履歴で開始します", "error", perr)
		return nil
	}
	s.items = items
	return nil
}

// decode は保存データを復元し、重複 ID は先に現れたもの（新しい方）だけを残します。
func decode(raw []byte) ([]domain.GeneratedResult, error) {
	var items []domain.GeneratedResult
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, nil
}

// persist は mu を保持した状態で呼び出すこと。
func (s *Store) persist(items []domain.GeneratedResult) error {
	if items == nil {
		items = []domain.GeneratedResult{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.storage.Set(s.key, raw); err != nil {
		return fmt.Errorf("履歴の保存に失敗しました: %w", err)
	}
	return nil
}

// List は履歴のコピーを新しい順で返します。
func (s *Store) List() []domain.GeneratedResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GeneratedResult, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get は ID で履歴を引きます。
func (s *Store) Get(id string) (domain.GeneratedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.GeneratedResult{}, false
}

// Head は最新の履歴を返します。
func (s *Store) Head() (domain.GeneratedResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return domain.GeneratedResult{}, false
	}
	return s.items[0], true
}

// Prepend は結果を先頭に追加して保存します。同じ ID があれば置き換えます。
// 保存に失敗した場合、メモリ上の履歴も変更しません。
func (s *Store) Prepend(r domain.GeneratedResult) error {
	if r.ID == "" {
		return fmt.Errorf("result id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.GeneratedResult, 0, len(s.items)+1)
	next = append(next, r)
	for _, it := range s.items {
		if it.ID != r.ID {
			next = append(next, it)
		}
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// Delete は ID の履歴を削除して保存します。存在しない ID の場合は何もせず false を返します。
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]domain.GeneratedResult, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	if err := s.persist(next); err != nil {
		return false, err
	}
	s.items = next
	return true, nil
}
