package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/patrickmn/go-cache"
)

// ErrKeyNotFound はキーに対応する値が保存されていないことを示します。
var ErrKeyNotFound = errors.New("key not found")

// Storage は名前付きエントリを1つずつ保存するキーバリューストアです。
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

var safeKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileStorage はディレクトリ配下に「キー.json」として値を保存します。
type FileStorage struct {
	dir string
}

// NewFileStorage は保存先ディレクトリを作成して FileStorage を返します。
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("保存先ディレクトリの作成に失敗しました: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) (string, error) {
	if !safeKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStorage) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrKeyNotFound
	}
	return data, err
}

// Set は一時ファイルに書き出してから置き換えます。途中で失敗しても既存の値は壊れません。
func (s *FileStorage) Set(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// CacheStorage はプロセス内だけで値を保持するストレージです。
type CacheStorage struct {
	c *cache.Cache
}

func NewCacheStorage() *CacheStorage {
	return &CacheStorage{c: cache.New(cache.NoExpiration, 0)}
}

func (s *CacheStorage) Get(key string) ([]byte, error) {
	val, ok := s.c.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected value type %T for key %q", val, key)
	}
	return append([]byte(nil), data...), nil
}

func (s *CacheStorage) Set(key string, value []byte) error {
	s.c.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}
