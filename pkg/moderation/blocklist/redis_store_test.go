package blocklist_test

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modguard/pipeline/pkg/moderation/blocklist"
)

func TestRedisStore_Load(t *testing.T) {
	t.Run("parses entries from the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(blocklist.DefaultRedisKey).SetVal(
			`[{"phrase":"blocked term","severity":"block"}]`,
		)

		store := blocklist.NewRedisStore(client, "")
		entries, err := store.Load(context.Background())

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "blocked term", entries[0].Phrase)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing key means empty list", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet("custom:key").RedisNil()

		store := blocklist.NewRedisStore(client, "custom:key")
		entries, err := store.Load(context.Background())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(blocklist.DefaultRedisKey).SetVal(`{broken`)

		store := blocklist.NewRedisStore(client, "")
		_, err := store.Load(context.Background())

		assert.Error(t, err)
	})
}
