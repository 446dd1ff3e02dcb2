package history

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shouni/go-sprite-forge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string, ts int64) domain.GeneratedResult {
	return domain.GeneratedResult{
		ID:        id,
		ImageURL:  "data:image/png;base64,QUJD",
		Prompt:    "slime " + id,
		Style:     domain.ArtStylePixelArt,
		Type:      domain.SpriteTypeSingleCharacter,
		Timestamp: ts,
	}
}

func ids(items []domain.GeneratedResult) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestStore_PrependOrdersNewestFirst(t *testing.T) {
	s, err := NewStore(NewCacheStorage(), "")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Prepend(result(fmt.Sprint(i), int64(i))))
	}

	assert.Equal(t, []string{"3", "2", "1"}, ids(s.List()))
	head, ok := s.Head()
	require.True(t, ok)
	assert.Equal(t, "3", head.ID)
}

func TestStore_PrependReplacesDuplicateID(t *testing.T) {
	s, _ := NewStore(NewCacheStorage(), "")
	require.NoError(t, s.Prepend(result("a", 1)))
	require.NoError(t, s.Prepend(result("b", 2)))

	require.NoError(t, s.Prepend(result("a", 3)))

	assert.Equal(t, []string{"a", "b"}, ids(s.List()))
	got, _ := s.Get("a")
	assert.Equal(t, int64(3), got.Timestamp)
}

func TestStore_RoundTrip(t *testing.T) {
	storage := NewCacheStorage()
	s, _ := NewStore(storage, "")
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Prepend(result(fmt.Sprint(i), int64(i*1000))))
	}

	reloaded, err := NewStore(storage, "")
	require.NoError(t, err)

	assert.Equal(t, s.List(), reloaded.List())
}

func TestStore_Delete(t *testing.T) {
	storage := NewCacheStorage()
	s, _ := NewStore(storage, "")
	require.NoError(t, s.Prepend(result("a", 1)))
	require.NoError(t, s.Prepend(result("b", 2)))

	t.Run("存在するIDを削除すると保存にも反映される", func(t *testing.T) {
		ok, err := s.Delete("b")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"a"}, ids(s.List()))

		reloaded, _ := NewStore(storage, "")
		assert.Equal(t, []string{"a"}, ids(reloaded.List()))
	})

	t.Run("存在しないIDの削除は何も変えない", func(t *testing.T) {
		before, _ := storage.Get(DefaultKey)

		ok, err := s.Delete("missing")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []string{"a"}, ids(s.List()))
		after, _ := storage.Get(DefaultKey)
		assert.Equal(t, before, after)
	})

	t.Run("最後の1件を消すと空配列が保存される", func(t *testing.T) {
		_, err := s.Delete("a")
		require.NoError(t, err)

		raw, err := storage.Get(DefaultKey)
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(raw))
		_, ok := s.Head()
		assert.False(t, ok)
	})
}

func TestStore_LoadCorruptData(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":"x"}`, `"text"`} {
		t.Run(raw, func(t *testing.T) {
			storage := NewCacheStorage()
			require.NoError(t, storage.Set(DefaultKey, []byte(raw)))

			s, err := NewStore(storage, "")

			require.NoError(t, err, "壊れたデータはエラーにせず破棄する")
			assert.Zero(t, s.Len())
		})
	}
}

func TestStore_LoadBrowserExport(t *testing.T) {
	raw := `[{"id":"1715000000001","imageUrl":"data:image/png;base64,QUJD","prompt":"Walking cycle side view","style":"Pixel Art","type":"Sprite Sheet (Grid)","timestamp":1715000000001},
	         {"id":"1715000000000","imageUrl":"data:image/png;base64,QUJD","prompt":"Cute slime","style":"Voxel","type":"Item Icon","timestamp":1715000000000}]`
	storage := NewCacheStorage()
	require.NoError(t, storage.Set(DefaultKey, []byte(raw)))

	s, err := NewStore(storage, "")
	require.NoError(t, err)

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, domain.SpriteTypeSpriteSheet, items[0].Type)
	assert.Equal(t, domain.ArtStyleVoxel, items[1].Style)
}

func TestStore_LoadDropsDuplicateIDs(t *testing.T) {
	items := []domain.GeneratedResult{result("a", 3), result("b", 2), result("a", 1)}
	raw, _ := json.Marshal(items)
	storage := NewCacheStorage()
	require.NoError(t, storage.Set(DefaultKey, raw))

	s, _ := NewStore(storage, "")

	assert.Equal(t, []string{"a", "b"}, ids(s.List()))
	got, _ := s.Get("a")
	assert.Equal(t, int64(3), got.Timestamp)
}

func TestStore_PersistFailureKeepsMemoryUnchanged(t *testing.T) {
	s, _ := NewStore(&failingStorage{Storage: NewCacheStorage()}, "")

	err := s.Prepend(result("a", 1))

	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, s.Len())
}

func TestNewStore_RequiresStorage(t *testing.T) {
	_, err := NewStore(nil, "")
	assert.Error(t, err)
}
