package builder

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"

	"github.com/shouni/go-sprite-forge/pkg/generator"
)

// ObjectWriter は gs:// への書き出し先です。remoteio.OutputWriter はこのインターフェースを満たします。
type ObjectWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// ObjectStore は Cloud Storage の読み書きをまとめたものです。
// GCS クライアントは gs:// のパスが初めて使われた時に作られるため、
// ローカルだけで使う場合は認証情報を必要としません。
// 初期化に失敗した場合は保持せず、次の呼び出しで作り直します。
type ObjectStore struct {
	init func(ctx context.Context) (generator.ObjectReader, ObjectWriter, error)

	mu     sync.Mutex
	reader generator.ObjectReader
	writer ObjectWriter
}

func newObjectStore() *ObjectStore {
	return &ObjectStore{init: initializeGCS}
}

// initializeGCS は go-remote-io の GCS ファクトリからリーダーとライターを作ります。
func initializeGCS(ctx context.Context) (generator.ObjectReader, ObjectWriter, error) {
	factory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := factory.NewInputReader()
	if err != nil {
		return nil, nil, err
	}
	writer, err := factory.NewOutputWriter()
	if err != nil {
		return nil, nil, err
	}
	return reader, writer, nil
}

func (s *ObjectStore) ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader != nil && s.writer != nil {
		return nil
	}
	reader, writer, err := s.init(ctx)
	if err != nil {
		return err
	}
	s.reader, s.writer = reader, writer
	return nil
}

// Open は gs:// のオブジェクトを開きます。
func (s *ObjectStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.reader.Open(ctx, path)
}

// Write は gs:// のパスにデータを書き出します。
func (s *ObjectStore) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.writer.Write(ctx, path, r, contentType)
}
