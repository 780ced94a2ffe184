package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/cyberhook/pkg/kvstore"
)

func TestNewFile(t *testing.T) {
	t.Run("bad dep", func(t *testing.T) {
		c, err := kvstore.NewFile(kvstore.FileConfig{})
		assert.Nil(t, c)
		assert.Error(t, err)
	})

	t.Run("creates nested dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		c, err := kvstore.NewFile(kvstore.FileConfig{Dir: dir})
		assert.NotNil(t, c)
		assert.NoError(t, err)

		info, err := os.Stat(dir)
		assert.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestFile_GetAsSet(t *testing.T) {
	type S struct {
		Value string
	}

	ctx := context.Background()

	t.Run("no key found", func(t *testing.T) {
		c, err := kvstore.NewFile(kvstore.FileConfig{Dir: t.TempDir()})
		assert.NoError(t, err)

		var out S
		err = c.GetAs(ctx, "key", &out)
		assert.ErrorIs(t, err, kvstore.ErrKeyNotExist)
	})

	t.Run("invalid key", func(t *testing.T) {
		c, err := kvstore.NewFile(kvstore.FileConfig{Dir: t.TempDir()})
		assert.NoError(t, err)

		err = c.Set(ctx, "../escape", S{})
		assert.Error(t, err)

		var out S
		err = c.GetAs(ctx, "a/b", &out)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, kvstore.ErrKeyNotExist)
	})

	t.Run("overwrite and no temp file left", func(t *testing.T) {
		dir := t.TempDir()
		c, err := kvstore.NewFile(kvstore.FileConfig{Dir: dir})
		assert.NoError(t, err)

		err = c.Set(ctx, "cyberhook_data", S{Value: "first"})
		assert.NoError(t, err)

		err = c.Set(ctx, "cyberhook_data", S{Value: "second"})
		assert.NoError(t, err)

		var out S
		err = c.GetAs(ctx, "cyberhook_data", &out)
		assert.NoError(t, err)
		assert.Equal(t, "second", out.Value)

		entries, err := os.ReadDir(dir)
		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, "cyberhook_data.json", entries[0].Name())
	})

	t.Run("malformed content", func(t *testing.T) {
		dir := t.TempDir()
		c, err := kvstore.NewFile(kvstore.FileConfig{Dir: dir})
		assert.NoError(t, err)

		err = os.WriteFile(filepath.Join(dir, "key.json"), []byte("{broken"), 0o600)
		assert.NoError(t, err)

		var out S
		err = c.GetAs(ctx, "key", &out)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, kvstore.ErrKeyNotExist)
	})
}

func TestFile_Delete(t *testing.T) {
	ctx := context.Background()

	c, err := kvstore.NewFile(kvstore.FileConfig{Dir: t.TempDir()})
	assert.NoError(t, err)

	err = c.Delete(ctx, "missing")
	assert.NoError(t, err)

	err = c.Set(ctx, "key", map[string]int{"a": 1})
	assert.NoError(t, err)

	err = c.Delete(ctx, "key")
	assert.NoError(t, err)

	var out map[string]int
	err = c.GetAs(ctx, "key", &out)
	assert.ErrorIs(t, err, kvstore.ErrKeyNotExist)
}
