package generator

import (
	"fmt"

	"github.com/shouni/go-sprite-forge/pkg/domain"
	"google.golang.org/genai"
)

// ExtractImage は Gemini のレスポンスから最初の画像パーツを取り出します。
// 現在の仕様では、最初の候補 (Candidate) のみを利用します。
func ExtractImage(resp *genai.GenerateContentResponse) (*ImageOutput, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, domain.ErrEmptyResponse
	}
	candidate := resp.Candidates[0]

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if abnormalFinish(candidate.FinishReason) {
			return nil, fmt.Errorf("%w (FinishReason: %s)", domain.ErrEmptyResponse, candidate.FinishReason)
		}
		return nil, domain.ErrEmptyResponse
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = domain.DefaultMimeType
		}
		return &ImageOutput{Data: part.InlineData.Data, MimeType: mimeType}, nil
	}

	// 安全フィルター等によるブロックの確認
	if abnormalFinish(candidate.FinishReason) {
		return nil, fmt.Errorf("%w (FinishReason: %s)", domain.ErrNoImageFound, candidate.FinishReason)
	}
	return nil, domain.ErrNoImageFound
}

func abnormalFinish(reason genai.FinishReason) bool {
	return reason != "" && reason != genai.FinishReasonUnspecified && reason != genai.FinishReasonStop
}
