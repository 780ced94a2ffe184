package sessionrepo_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/cyberhook/pkg/kvstore"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

func historyMessage(i int) webhook.HistoryMessage {
	return webhook.HistoryMessage{
		ID:         fmt.Sprintf("msg-%d", i),
		Content:    fmt.Sprintf("content %d", i),
		Username:   webhook.DefaultUsername,
		Timestamp:  time.Date(2023, 5, 1, 10, 0, i, 0, time.UTC),
		WebhookURL: "https://discord.com/api/webhooks/1/token",
	}
}

func TestAppendHistory(t *testing.T) {
	t.Run("prepend", func(t *testing.T) {
		history := sessionrepo.AppendHistory(nil, historyMessage(1))
		history = sessionrepo.AppendHistory(history, historyMessage(2))

		assert.Len(t, history, 2)
		assert.Equal(t, "msg-2", history[0].ID)
		assert.Equal(t, "msg-1", history[1].ID)
	})

	t.Run("101 appends keeps newest 100", func(t *testing.T) {
		var history []webhook.HistoryMessage
		for i := 0; i < 101; i++ {
			history = sessionrepo.AppendHistory(history, historyMessage(i))
		}

		assert.Len(t, history, webhook.MaxHistory)
		assert.Equal(t, "msg-100", history[0].ID)
		assert.Equal(t, "msg-1", history[len(history)-1].ID)
	})

	t.Run("input not mutated", func(t *testing.T) {
		history := make([]webhook.HistoryMessage, 0, 10)
		history = append(history, historyMessage(1), historyMessage(2))

		out := sessionrepo.AppendHistory(history, historyMessage(3))
		assert.Len(t, out, 3)
		assert.Equal(t, "msg-1", history[0].ID)
		assert.Equal(t, "msg-2", history[1].ID)
	})
}

func TestNewKV(t *testing.T) {
	repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{})
	assert.Error(t, err)
	assert.Nil(t, repo)

	store, err := kvstore.NewInMemory()
	require.NoError(t, err)

	repo, err = sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
	assert.NoError(t, err)
	assert.Equal(t, sessionrepo.DefaultStorageKey, repo.Config.StorageKey)
}

func TestKVRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()

	fileStore, err := kvstore.NewFile(kvstore.FileConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	memStore, err := kvstore.NewInMemory()
	require.NoError(t, err)

	stores := map[string]kvstore.Store{
		"file":     fileStore,
		"inmemory": memStore,
	}

	color := 0x7B68EE
	cfg := webhook.Config{
		URL:       "https://discord.com/api/webhooks/123456789012345678/AbCdEf-123",
		Username:  "bot",
		AvatarURL: "https://example.com/a.png",
	}

	msg := historyMessage(1)
	msg.AvatarURL = cfg.AvatarURL
	msg.Embeds = []webhook.Embed{
		{
			Title:  "title",
			Color:  &color,
			Footer: &webhook.EmbedFooter{Text: "footer"},
			Fields: []webhook.EmbedField{{Name: "a", Value: "b", Inline: true}},
		},
	}
	msg.Attachments = []webhook.HistoryAttachment{
		{ID: "att-1", Filename: "a.txt", Size: 3, URL: "mem://att-1/a.txt", ContentType: "text/plain"},
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store, StorageKey: "round_trip"})
			require.NoError(t, err)

			history := []webhook.HistoryMessage{msg, historyMessage(0)}
			err = repo.Save(ctx, sessionrepo.InputSave{Config: cfg, Messages: history})
			assert.NoError(t, err)

			out := repo.Load(ctx)
			assert.False(t, out.Fallback)
			assert.Equal(t, cfg, out.Session.CurrentConfig)
			assert.Equal(t, history, out.Session.Messages)

			err = repo.ClearHistory(ctx, sessionrepo.InputClearHistory{Config: cfg})
			assert.NoError(t, err)

			out = repo.Load(ctx)
			assert.Equal(t, cfg, out.Session.CurrentConfig)
			assert.Empty(t, out.Session.Messages)
			assert.NotNil(t, out.Session.Messages)
		})
	}
}

func TestKVRepo_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		store, err := kvstore.NewInMemory()
		require.NoError(t, err)

		repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
		require.NoError(t, err)

		out := repo.Load(ctx)
		assert.True(t, out.Fallback)
		assert.Equal(t, webhook.DefaultSession(), out.Session)
	})

	t.Run("malformed", func(t *testing.T) {
		dir := t.TempDir()
		store, err := kvstore.NewFile(kvstore.FileConfig{Dir: dir})
		require.NoError(t, err)

		err = os.WriteFile(filepath.Join(dir, sessionrepo.DefaultStorageKey+".json"), []byte(`{"messages": "oops`), 0o600)
		require.NoError(t, err)

		repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
		require.NoError(t, err)

		out := repo.Load(ctx)
		assert.True(t, out.Fallback)
		assert.Equal(t, "", out.Session.CurrentConfig.URL)
		assert.Equal(t, webhook.DefaultUsername, out.Session.CurrentConfig.Username)
		assert.Empty(t, out.Session.Messages)
	})

	t.Run("missing keys", func(t *testing.T) {
		s := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: s.Addr()})

		store, err := kvstore.NewRedis(kvstore.RedisConfig{DB: client})
		require.NoError(t, err)

		require.NoError(t, s.Set(sessionrepo.DefaultStorageKey, `{"messages": null}`))

		repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
		require.NoError(t, err)

		out := repo.Load(ctx)
		assert.False(t, out.Fallback)
		assert.Equal(t, webhook.DefaultConfig(), out.Session.CurrentConfig)
		assert.NotNil(t, out.Session.Messages)
		assert.Empty(t, out.Session.Messages)
	})

	t.Run("empty username kept as stored", func(t *testing.T) {
		s := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: s.Addr()})

		store, err := kvstore.NewRedis(kvstore.RedisConfig{DB: client})
		require.NoError(t, err)

		require.NoError(t, s.Set(sessionrepo.DefaultStorageKey, `{"messages": [], "currentConfig": {"url": "", "username": ""}}`))

		repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
		require.NoError(t, err)

		out := repo.Load(ctx)
		assert.Equal(t, "", out.Session.CurrentConfig.Username)
	})

	t.Run("backend error", func(t *testing.T) {
		s := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: s.Addr()})

		store, err := kvstore.NewRedis(kvstore.RedisConfig{DB: client})
		require.NoError(t, err)
		require.NoError(t, client.Close())

		repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
		require.NoError(t, err)

		out := repo.Load(ctx)
		assert.True(t, out.Fallback)
		assert.Equal(t, webhook.DefaultSession(), out.Session)
	})
}

func TestKVRepo_Save(t *testing.T) {
	store, err := kvstore.NewInMemory()
	require.NoError(t, err)

	repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{Store: store})
	require.NoError(t, err)

	tooMany := make([]webhook.HistoryMessage, webhook.MaxHistory+1)
	err = repo.Save(context.Background(), sessionrepo.InputSave{Config: webhook.DefaultConfig(), Messages: tooMany})
	assert.Error(t, err)
}
