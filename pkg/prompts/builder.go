package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-sprite-forge/pkg/domain"
	"google.golang.org/genai"
)

// AspectRatio は全リクエスト共通の生成パラメータです。
const AspectRatio = "1:1"

const (
	defaultStyleDescriptor = "Standard 2D video game art."
	defaultBackgroundRule  = "The background must be a solid white or black color for easy removal."
	referenceStyleRule     = "Art Style: Keep the exact same art style as the reference image."
)

var styleDescriptors = map[domain.ArtStyle]string{
	domain.ArtStylePixelArt:        "Authentic 16-bit or 32-bit pixel art style. Sharp edges, limited color palette, no anti-aliasing on the outline.",
	domain.ArtStyleVectorFlat:      "Flat vector art style, clean lines, cel-shaded, mobile game aesthetic, SVG style.",
	domain.ArtStyleHandDrawn:       "Hand-drawn sketch style, RPG maker aesthetic, artistic, water color or pencil texture.",
	domain.ArtStyleIsometric3D:     "Isometric 3D pre-rendered style, Diablo-like, 2.5D perspective.",
	domain.ArtStyleVoxel:           "Voxel art style, cube-based, Minecraft-like, blocky.",
	domain.ArtStyleClaymation:      "Claymation style, plasticine texture, rounded edges.",
	domain.ArtStyleRealisticRender: "High fidelity 3D render, unreal engine style, realistic lighting.",
}

var typeDescriptors = map[domain.SpriteType]string{
	domain.SpriteTypeSingleCharacter: "A single full-body character sprite in a neutral dynamic pose.",
	domain.SpriteTypeSpriteSheet:     "A sprite sheet containing multiple frames of animation (e.g., idle, run, jump) arranged in a grid.",
	domain.SpriteTypeIcon:            "A single UI inventory icon, centered, fits in a square frame.",
	domain.SpriteTypePortrait:        "A character face portrait or bust, detailed expressions.",
	domain.SpriteTypeTileset:         "A seamless tilable texture or environmental prop set (walls, floors).",
}

// Payload は Gemini に送るパーツ列と生成パラメータです。
// 参照画像がある場合は画像パーツが先頭、テキストパーツは常に最後の1つです。
type Payload struct {
	Parts       []*genai.Part
	AspectRatio string
}

// Text はテキストパーツの内容を返します。
func (p *Payload) Text() string {
	if p == nil || len(p.Parts) == 0 {
		return ""
	}
	return p.Parts[len(p.Parts)-1].Text
}

// StyleDescriptor は画風ごとのプロンプト断片を返します。未知の値には既定の断片を返します。
func StyleDescriptor(style domain.ArtStyle) string {
	if d, ok := styleDescriptors[style]; ok {
		return d
	}
	return defaultStyleDescriptor
}

// TypeDescriptor はアセット種別ごとのプロンプト断片を返します。未知の値は単体キャラクター扱いです。
func TypeDescriptor(t domain.SpriteType) string {
	if d, ok := typeDescriptors[t]; ok {
		return d
	}
	return typeDescriptors[domain.SpriteTypeSingleCharacter]
}

// BackgroundClause は背景色の指示文を組み立てます。
func BackgroundClause(color string) string {
	color = strings.TrimSpace(color)
	if color == "" {
		return defaultBackgroundRule
	}
	return fmt.Sprintf("The background must be a solid, flat color: %s. Do not use gradients or detailed backgrounds. The subject must be clearly isolated.", color)
}

// Build は生成要求を Gemini のリクエストパーツに変換します。
func Build(req domain.GenerationRequest) (*Payload, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if !req.Style.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStyle, req.Style)
	}
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidType, req.Type)
	}

	typePrompt := TypeDescriptor(req.Type)
	bgPrompt := BackgroundClause(req.BackgroundColor)

	payload := &Payload{AspectRatio: AspectRatio}
	if req.HasReference() {
		payload.Parts = []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: domain.DefaultMimeType, Data: req.ReferenceImage}},
			{Text: referencePrompt(prompt, typePrompt, bgPrompt)},
		}
		return payload, nil
	}

	payload.Parts = []*genai.Part{
		{Text: freshPrompt(prompt, StyleDescriptor(req.Style), typePrompt, bgPrompt)},
	}
	return payload, nil
}

// referencePrompt は参照キャラクターの同一性を保ったままポーズだけを変える指示です。
// 画風は参照画像に合わせるため、画風の断片は入れません。
func referencePrompt(task, typePrompt, bgPrompt string) string {
	var b strings.Builder
	b.WriteString("I have provided a reference image of a specific character.\n")
	b.WriteString("Your task is to create a NEW image of this EXACT SAME character.\n\n")
	fmt.Fprintf(&b, "Task: %s\n", task)
	fmt.Fprintf(&b, "Asset Type: %s\n", typePrompt)
	b.WriteString(referenceStyleRule + "\n")
	b.WriteString(bgPrompt + "\n\n")
	b.WriteString("CRITICAL INSTRUCTIONS:\n")
	b.WriteString("1. MAINTAIN CONSISTENCY: The facial features, clothing details, colors, and body proportions must match the reference image exactly.\n")
	b.WriteString("2. If asking for a sprite sheet/animation: Create strictly aligned frames in a grid for the requested action (e.g., walking, attacking).\n")
	b.WriteString("3. Do not change the character design, only change the pose or action.\n")
	return b.String()
}

func freshPrompt(subject, stylePrompt, typePrompt, bgPrompt string) string {
	var b strings.Builder
	b.WriteString("Create a high-quality video game asset.\n")
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Art Style: %s\n", stylePrompt)
	fmt.Fprintf(&b, "Asset Type: %s\n", typePrompt)
	b.WriteString(bgPrompt + "\n\n")
	b.WriteString("Ensure the image is sharp, clear, and follows the specified art style strictly.\n")
	b.WriteString("If it is pixel art, ensure pixels are consistent grid-aligned.\n")
	b.WriteString("If it is a sprite sheet, arrange the frames in a clean grid.\n")
	return b.String()
}
