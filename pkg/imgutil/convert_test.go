package imgutil

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPNG(t *testing.T) {
	t.Run("PNG はそのまま返す", func(t *testing.T) {
		in := createDummyImageData(t, "png")

		got, err := ToPNG(in)

		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	t.Run("JPEG は PNG に変換される", func(t *testing.T) {
		in := createDummyImageData(t, "jpeg")

		got, err := ToPNG(in)

		require.NoError(t, err)
		_, format, err := image.Decode(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
	})

	t.Run("画像でないデータはエラー", func(t *testing.T) {
		_, err := ToPNG([]byte("this is not an image"))
		assert.Error(t, err)
	})

	t.Run("空データはエラー", func(t *testing.T) {
		_, err := ToPNG(nil)
		assert.Error(t, err)
	})
}
