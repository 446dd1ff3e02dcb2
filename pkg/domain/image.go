package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const DefaultMimeType = "image/png"

// GenerationRequest は1回の送信分の生成要求です。送信ごとに作り直し、変更しません。
type GenerationRequest struct {
	Prompt          string
	Style           ArtStyle
	Type            SpriteType
	BackgroundColor string
	ReferenceImage  []byte // PNG。nil なら新規生成
}

// HasReference は参照画像付きの要求かどうかを返します。
func (r GenerationRequest) HasReference() bool {
	return len(r.ReferenceImage) > 0
}

// GeneratedResult は生成済みスプライトです。作成後は変更しません。
// JSON 表現は保存済み履歴のフォーマットそのものです。
type GeneratedResult struct {
	ID        string     `json:"id"`
	ImageURL  string     `json:"imageUrl"` // data URI
	Prompt    string     `json:"prompt"`
	Style     ArtStyle   `json:"style"`
	Type      SpriteType `json:"type"`
	Timestamp int64      `json:"timestamp"` // unix ミリ秒
}

func (r GeneratedResult) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// ImageBytes は data URI をデコードして画像バイト列と MIME タイプを返します。
func (r GeneratedResult) ImageBytes() ([]byte, string, error) {
	return DecodeDataURI(r.ImageURL)
}

// EncodeDataURI は画像バイト列を base64 の data URI に変換します。
func EncodeDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI は base64 の data URI をデコードします。
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return data, mimeType, nil
}
