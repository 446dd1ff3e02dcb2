package generator

import (
	"time"

	"github.com/shouni/go-sprite-forge/pkg/domain"
)

const (
	DefaultModel        = "gemini-2.5-flash-image"
	DefaultAPIKeyEnv    = "GEMINI_API_KEY"
	DefaultReferenceTTL = 30 * time.Minute
	cacheKeyReference   = "reference:"
)

// ImageOutput はレスポンスから取り出した画像です。
type ImageOutput struct {
	Data     []byte
	MimeType string
}

// DataURI は画像を data URI 形式で返します。
func (o *ImageOutput) DataURI() string {
	return domain.EncodeDataURI(o.MimeType, o.Data)
}
