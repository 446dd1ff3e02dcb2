package generator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyImage(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	buf := new(bytes.Buffer)
	var err error
	if format == "jpeg" {
		err = jpeg.Encode(buf, img, nil)
	} else {
		err = png.Encode(buf, img)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReferenceLoader_Load(t *testing.T) {
	ctx := context.Background()
	pngData := dummyImage(t, "png")

	t.Run("ローカルPNGはそのまま返す", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hero.png")
		require.NoError(t, os.WriteFile(path, pngData, 0o644))
		loader, err := NewReferenceLoader(&mockHTTPClient{}, nil, time.Hour)
		require.NoError(t, err)

		got, err := loader.Load(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, pngData, got)
	})

	t.Run("ローカルJPEGはPNGに変換される", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hero.jpg")
		require.NoError(t, os.WriteFile(path, dummyImage(t, "jpeg"), 0o644))
		loader, _ := NewReferenceLoader(&mockHTTPClient{}, nil, time.Hour)

		got, err := loader.Load(ctx, path)

		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(got, []byte("\x89PNG")))
	})

	t.Run("data URI を読み込める", func(t *testing.T) {
		loader, _ := NewReferenceLoader(&mockHTTPClient{}, nil, time.Hour)

		got, err := loader.Load(ctx, domain.EncodeDataURI("image/png", pngData))

		require.NoError(t, err)
		assert.Equal(t, pngData, got)
	})

	t.Run("キャッシュヒット時はダウンロードしない", func(t *testing.T) {
		src := "https://8.8.8.8/hero.png"
		cache := &mockCache{data: map[string]any{cacheKeyReference + src: pngData}}
		httpMock := &mockHTTPClient{}
		loader, _ := NewReferenceLoader(httpMock, cache, time.Hour)

		got, err := loader.Load(ctx, src)

		require.NoError(t, err)
		assert.Equal(t, pngData, got)
		assert.Zero(t, httpMock.calls)
	})

	t.Run("キャッシュがない場合はダウンロードして保存する", func(t *testing.T) {
		src := "https://8.8.8.8/new.png"
		cache := &mockCache{data: make(map[string]any)}
		httpMock := &mockHTTPClient{data: pngData}
		loader, _ := NewReferenceLoader(httpMock, cache, time.Hour)

		got, err := loader.Load(ctx, src)

		require.NoError(t, err)
		assert.Equal(t, pngData, got)
		assert.Equal(t, 1, httpMock.calls)
		cached, ok := cache.Get(cacheKeyReference + src)
		assert.True(t, ok, "should be cached")
		assert.Equal(t, pngData, cached)
	})

	t.Run("プライベートアドレスはブロックされる", func(t *testing.T) {
		httpMock := &mockHTTPClient{data: pngData}
		loader, _ := NewReferenceLoader(httpMock, nil, time.Hour)

		_, err := loader.Load(ctx, "http://127.0.0.1/evil.png")

		assert.Error(t, err)
		assert.Zero(t, httpMock.calls)
	})

	t.Run("ダウンロード失敗はエラー", func(t *testing.T) {
		loader, _ := NewReferenceLoader(&mockHTTPClient{err: errors.New("timeout")}, nil, time.Hour)

		_, err := loader.Load(ctx, "https://8.8.8.8/x.png")

		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("gs:// はオブジェクトリーダーから読み込む", func(t *testing.T) {
		objects := &mockObjectReader{data: dummyImage(t, "jpeg")}
		httpMock := &mockHTTPClient{}
		loader, _ := NewReferenceLoader(httpMock, &mockCache{data: make(map[string]any)}, time.Hour)
		loader.WithObjectReader(objects)

		got, err := loader.Load(ctx, "gs://sprites/hero.jpg")

		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(got, []byte("\x89PNG")))
		assert.Equal(t, []string{"gs://sprites/hero.jpg"}, objects.paths)
		assert.Zero(t, httpMock.calls)

		_, err = loader.Load(ctx, "gs://sprites/hero.jpg")
		require.NoError(t, err)
		assert.Len(t, objects.paths, 1, "2回目はキャッシュから返す")
	})

	t.Run("オブジェクトリーダー未設定の gs:// はエラー", func(t *testing.T) {
		loader, _ := NewReferenceLoader(&mockHTTPClient{}, nil, time.Hour)

		_, err := loader.Load(ctx, "gs://sprites/hero.png")

		assert.Error(t, err)
	})

	t.Run("画像でないデータはエラー", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
		loader, _ := NewReferenceLoader(&mockHTTPClient{}, nil, time.Hour)

		_, err := loader.Load(ctx, path)

		assert.Error(t, err)
	})
}

func TestNewReferenceLoader(t *testing.T) {
	_, err := NewReferenceLoader(nil, nil, time.Hour)
	assert.Error(t, err)
}
