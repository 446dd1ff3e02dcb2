package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/shouni/go-sprite-forge/pkg/generator"
	"github.com/shouni/go-sprite-forge/pkg/history"
	"github.com/shouni/go-sprite-forge/pkg/imgutil"
)

// State は生成リクエストの進行状態です。
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var errNoGenerator = errors.New("generator is not configured")

// Input はフォームから送られてくる1回分の入力です。
type Input struct {
	Prompt          string
	Style           domain.ArtStyle // 空なら参照画像の画風、それもなければ Pixel Art
	Type            domain.SpriteType
	BackgroundColor string
	// ReferenceImage は履歴以外から読み込んだ参照画像です。指定時は履歴の参照より優先します。
	ReferenceImage []byte
}

// Option は Session の生成時オプションです。
type Option func(*Session)

// WithClock は作成日時に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator は結果 ID の採番方法を差し替えます。
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// Session は表示中の結果、履歴、参照画像の選択をまとめて管理します。
// 同時に進行できる生成は1つだけで、実行中の送信は ErrGenerationInProgress で拒否します。
type Session struct {
	mu          sync.Mutex
	store       *history.Store
	gen         generator.SpriteGenerator
	state       State
	activeID    string
	referenceID string
	lastErr     error

	now   func() time.Time
	newID func() string
}

// New は履歴を読み込んだ Store から Session を作ります。最新の履歴が表示中になります。
// gen が nil の場合、履歴操作だけが可能です。
func New(store *history.Store, gen generator.SpriteGenerator, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	s := &Session{
		store: store,
		gen:   gen,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if head, ok := store.Head(); ok {
		s.activeID = head.ID
	}
	return s, nil
}

// Submit は入力を検証して生成を実行し、成功すれば履歴の先頭に追加して表示中にします。
// 失敗時は履歴を変更せず、エラーを LastError に残して Idle に戻ります。
func (s *Session) Submit(ctx context.Context, in Input) (*domain.GeneratedResult, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}

	req, err := s.begin(ctx, in)
	if err != nil {
		return nil, err
	}

	out, err := s.gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.state = StateIdle }()

	if err != nil {
		s.lastErr = err
		return nil, err
	}

	result := domain.GeneratedResult{
		ID:        s.newID(),
		ImageURL:  out.DataURI(),
		Prompt:    in.Prompt,
		Style:     req.Style,
		Type:      req.Type,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.Prepend(result); err != nil {
		s.lastErr = err
		return nil, err
	}
	s.activeID = result.ID

	slog.InfoContext(ctx, "スプライトを履歴に追加しました", "id", result.ID, "history", s.store.Len())
	return &result, nil
}

// begin は Submitting に遷移して生成要求を組み立てます。
func (s *Session) begin(ctx context.Context, in Input) (domain.GenerationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen == nil {
		return domain.GenerationRequest{}, errNoGenerator
	}
	if s.state == StateSubmitting {
		return domain.GenerationRequest{}, domain.ErrGenerationInProgress
	}

	req := domain.GenerationRequest{
		Prompt:          in.Prompt,
		Style:           in.Style,
		Type:            in.Type,
		BackgroundColor: in.BackgroundColor,
		ReferenceImage:  in.ReferenceImage,
	}

	if !req.HasReference() && s.referenceID != "" {
		ref, ok := s.store.Get(s.referenceID)
		if !ok {
			slog.WarnContext(ctx, "参照画像が履歴に見つからないため解除しました", "id", s.referenceID)
			s.referenceID = ""
		} else {
			data, err := referenceBytes(ref)
			if err != nil {
				s.lastErr = err
				return domain.GenerationRequest{}, err
			}
			req.ReferenceImage = data
			if req.Style == "" {
				req.Style = ref.Style
			}
		}
	}

	if req.Style == "" {
		req.Style = domain.ArtStylePixelArt
	}
	if req.Type == "" {
		req.Type = domain.SpriteTypeSingleCharacter
	}

	s.state = StateSubmitting
	s.lastErr = nil
	return req, nil
}

// referenceBytes は履歴の画像を添付用の PNG に揃えます。
func referenceBytes(ref domain.GeneratedResult) ([]byte, error) {
	data, mimeType, err := ref.ImageBytes()
	if err != nil {
		return nil, fmt.Errorf("参照画像の読み込みに失敗しました: %w", err)
	}
	if mimeType == domain.DefaultMimeType {
		return data, nil
	}
	png, err := imgutil.ToPNG(data)
	if err != nil {
		return nil, fmt.Errorf("参照画像を PNG に変換できませんでした: %w", err)
	}
	return png, nil
}

// Delete は履歴から結果を削除します。表示中なら新しい先頭に、参照中なら参照を解除します。
// 存在しない ID の場合は何も変えずに false を返します。
func (s *Session) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.Delete(id)
	if err != nil || !ok {
		return ok, err
	}

	if s.activeID == id {
		s.activeID = ""
		if head, found := s.store.Head(); found {
			s.activeID = head.ID
		}
	}
	if s.referenceID == id {
		s.referenceID = ""
	}
	return true, nil
}

// Active は表示中の結果を返します。
func (s *Session) Active() (domain.GeneratedResult, bool) {
	s.mu.Lock()
	id := s.activeID
	s.mu.Unlock()
	if id == "" {
		return domain.GeneratedResult{}, false
	}
	return s.store.Get(id)
}

// SetActive は履歴から表示する結果を選びます。
func (s *Session) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Get(id); !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	s.activeID = id
	return nil
}

// SetReference は次の生成で使う参照画像を履歴から選びます。
func (s *Session) SetReference(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store.Get(id); !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	s.referenceID = id
	return nil
}

func (s *Session) ClearReference() {
	s.mu.Lock()
	s.referenceID = ""
	s.mu.Unlock()
}

// Reference は参照中の結果を返します。履歴から消えていれば false です。
func (s *Session) Reference() (domain.GeneratedResult, bool) {
	s.mu.Lock()
	id := s.referenceID
	s.mu.Unlock()
	if id == "" {
		return domain.GeneratedResult{}, false
	}
	return s.store.Get(id)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError は直近の生成失敗を返します。次の送信開始でクリアされます。
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// History は履歴を新しい順で返します。
func (s *Session) History() []domain.GeneratedResult {
	return s.store.List()
}
