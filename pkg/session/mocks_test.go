package session

import (
	"context"
	"sync"

	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/shouni/go-sprite-forge/pkg/generator"
)

// mockGenerator は受け取った要求を記録し、固定の結果を返します。
type mockGenerator struct {
	mu       sync.Mutex
	requests []domain.GenerationRequest
	out      *generator.ImageOutput
	err      error
	// block が nil でなければ、閉じられるまで Generate は戻りません。
	block   chan struct{}
	started chan struct{}
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*generator.ImageOutput, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.started != nil {
		close(m.started)
	}
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.out != nil {
		return m.out, nil
	}
	return &generator.ImageOutput{Data: []byte("ABC"), MimeType: "image/png"}, nil
}

func (m *mockGenerator) lastRequest() domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

func (m *mockGenerator) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
