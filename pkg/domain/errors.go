package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyPrompt          = errors.New("prompt must not be empty")
	ErrInvalidStyle         = errors.New("unknown art style")
	ErrInvalidType          = errors.New("unknown sprite type")
	ErrEmptyResponse        = errors.New("no content generated")
	ErrNoImageFound         = errors.New("no image data found in the response")
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	ErrNotFound             = errors.New("sprite not found")
	ErrInvalidDataURI       = errors.New("invalid data URI")
)

// ConfigurationError は API キーなどの必須設定が欠けていることを示します。
// 通信を始める前に返されます。
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("API key is missing: set %s in your environment", e.Key)
}

// TransportError は Gemini API 呼び出しそのものの失敗です。
// メッセージは元のエラーをそのまま使います。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceParseError は保存済み履歴が壊れていて読み込めなかったことを示します。
type PersistenceParseError struct {
	Key string
	Err error
}

func (e *PersistenceParseError) Error() string {
	return fmt.Sprintf("failed to parse stored history %q: %v", e.Key, e.Err)
}

func (e *PersistenceParseError) Unwrap() error {
	return e.Err
}
