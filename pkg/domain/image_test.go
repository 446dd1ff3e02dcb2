package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURI(t *testing.T) {
	t.Run("エンコードは mime と base64 を組み合わせる", func(t *testing.T) {
		assert.Equal(t, "data:image/png;base64,QUJD", EncodeDataURI("image/png", []byte("ABC")))
	})

	t.Run("mime 未指定は PNG 扱い", func(t *testing.T) {
		assert.Equal(t, "data:image/png;base64,QUJD", EncodeDataURI("", []byte("ABC")))
	})

	t.Run("デコードで元のバイト列と mime が戻る", func(t *testing.T) {
		data, mimeType, err := DecodeDataURI("data:image/webp;base64,QUJD")
		require.NoError(t, err)
		assert.Equal(t, []byte("ABC"), data)
		assert.Equal(t, "image/webp", mimeType)
	})

	t.Run("不正な data URI はエラー", func(t *testing.T) {
		for _, uri := range []string{
			"https://example.com/a.png",
			"data:image/png;base64",
			"data:image/png,QUJD",
			"data:image/png;base64,@@@",
		} {
			_, _, err := DecodeDataURI(uri)
			assert.ErrorIs(t, err, ErrInvalidDataURI, uri)
		}
	})
}

func TestGeneratedResult(t *testing.T) {
	r := GeneratedResult{
		ID:        "1700000000000",
		ImageURL:  "data:image/png;base64,QUJD",
		Timestamp: 1700000000000,
	}

	assert.True(t, r.CreatedAt().Equal(time.UnixMilli(1700000000000)))

	data, mimeType, err := r.ImageBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("ABC"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestGenerationRequest_HasReference(t *testing.T) {
	assert.False(t, GenerationRequest{Prompt: "slime"}.HasReference())
	assert.True(t, GenerationRequest{Prompt: "walk", ReferenceImage: []byte{0x89}}.HasReference())
}
