package history

import "errors"

// failingStorage は Set が常に失敗するストレージです。
type failingStorage struct {
	Storage
}

func (f *failingStorage) Set(key string, value []byte) error {
	return errors.New("disk full")
}
