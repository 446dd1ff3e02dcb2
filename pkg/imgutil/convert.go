package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
)

// ToPNG は画像データを PNG に揃えます。すでに PNG の場合は入力をそのまま返します。
func ToPNG(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	if http.DetectContentType(data) == "image/png" {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
