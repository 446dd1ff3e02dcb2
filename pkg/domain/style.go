package domain

import (
	"fmt"
	"strings"
)

// ArtStyle は生成する画像の画風です。値は表示名をそのまま使います。
type ArtStyle string

const (
	ArtStylePixelArt        ArtStyle = "Pixel Art"
	ArtStyleVectorFlat      ArtStyle = "Vector Flat"
	ArtStyleHandDrawn       ArtStyle = "Hand Drawn"
	ArtStyleIsometric3D     ArtStyle = "Isometric 3D"
	ArtStyleVoxel           ArtStyle = "Voxel"
	ArtStyleClaymation      ArtStyle = "Claymation"
	ArtStyleRealisticRender ArtStyle = "Realistic Render"
)

// SpriteType は生成するアセットの種類です。
type SpriteType string

const (
	SpriteTypeSingleCharacter SpriteType = "Single Character"
	SpriteTypeSpriteSheet     SpriteType = "Sprite Sheet (Grid)"
	SpriteTypeIcon            SpriteType = "Item Icon"
	SpriteTypePortrait        SpriteType = "Character Portrait"
	SpriteTypeTileset         SpriteType = "Environment Tileset"
)

var artStyleSlugs = map[ArtStyle]string{
	ArtStylePixelArt:        "pixel-art",
	ArtStyleVectorFlat:      "vector-flat",
	ArtStyleHandDrawn:       "hand-drawn",
	ArtStyleIsometric3D:     "isometric-3d",
	ArtStyleVoxel:           "voxel",
	ArtStyleClaymation:      "claymation",
	ArtStyleRealisticRender: "realistic-render",
}

var spriteTypeSlugs = map[SpriteType]string{
	SpriteTypeSingleCharacter: "single-character",
	SpriteTypeSpriteSheet:     "sprite-sheet",
	SpriteTypeIcon:            "icon",
	SpriteTypePortrait:        "portrait",
	SpriteTypeTileset:         "tileset",
}

// ArtStyles は選択可能な画風を表示順で返します。
func ArtStyles() []ArtStyle {
	return []ArtStyle{
		ArtStylePixelArt,
		ArtStyleVectorFlat,
		ArtStyleHandDrawn,
		ArtStyleIsometric3D,
		ArtStyleVoxel,
		ArtStyleClaymation,
		ArtStyleRealisticRender,
	}
}

// SpriteTypes は選択可能なアセット種別を表示順で返します。
func SpriteTypes() []SpriteType {
	return []SpriteType{
		SpriteTypeSingleCharacter,
		SpriteTypeSpriteSheet,
		SpriteTypeIcon,
		SpriteTypePortrait,
		SpriteTypeTileset,
	}
}

func (s ArtStyle) IsValid() bool {
	_, ok := artStyleSlugs[s]
	return ok
}

// Slug は CLI で使う短い識別子を返します。
func (s ArtStyle) Slug() string {
	return artStyleSlugs[s]
}

func (t SpriteType) IsValid() bool {
	_, ok := spriteTypeSlugs[t]
	return ok
}

func (t SpriteType) Slug() string {
	return spriteTypeSlugs[t]
}

// ParseArtStyle はスラッグまたは表示名（大文字小文字は区別しない）から ArtStyle を解決します。
func ParseArtStyle(s string) (ArtStyle, error) {
	key := strings.TrimSpace(s)
	for style, slug := range artStyleSlugs {
		if strings.EqualFold(key, slug) || strings.EqualFold(key, string(style)) {
			return style, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
}

// ParseSpriteType はスラッグまたは表示名から SpriteType を解決します。
func ParseSpriteType(s string) (SpriteType, error) {
	key := strings.TrimSpace(s)
	for typ, slug := range spriteTypeSlugs {
		if strings.EqualFold(key, slug) || strings.EqualFold(key, string(typ)) {
			return typ, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

var (
	freshSuggestions = []string{
		"Cyberpunk street samurai with a glowing katana",
		"Cute slime monster, blue, happy expression",
		"Medieval potion bottle with magical swirls",
		"Isometric treasure chest, gold and wood",
	}
	referenceSuggestions = []string{
		"Walking cycle side view",
		"Attacking with sword",
		"Jump animation frames",
		"Taking damage pose",
	}
)

// Suggestions はプロンプト入力の候補を返します。
// 参照画像がある場合はポーズやアクション寄りの候補になります。
func Suggestions(hasReference bool) []string {
	src := freshSuggestions
	if hasReference {
		src = referenceSuggestions
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
