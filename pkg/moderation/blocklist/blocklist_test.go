package blocklist_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modguard/pipeline/pkg/moderation/blocklist"
)

type failingStore struct {
	err error
}

func (s *failingStore) Load(context.Context) ([]blocklist.Entry, error) {
	return nil, s.err
}

func newChecker(t *testing.T, entries ...blocklist.Entry) *blocklist.Checker {
	t.Helper()
	checker := blocklist.NewChecker(logrus.New(), blocklist.NewMemoryStore(entries))
	_, err := checker.Reload(context.Background())
	require.NoError(t, err)
	return checker
}

func TestChecker_BlockSeverityRejects(t *testing.T) {
	checker := newChecker(t,
		blocklist.Entry{Phrase: "blocked term", Severity: blocklist.SeverityBlock},
	)

	res, err := checker.Check(context.Background(), "this contains a blocked term here")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.NotContains(t, res.Reason, "blocked term")
}

func TestChecker_WarnSeverityAllows(t *testing.T) {
	checker := newChecker(t,
		blocklist.Entry{Phrase: "sketchy", Severity: blocklist.SeverityWarn},
	)

	res, err := checker.Check(context.Background(), "that was sketchy but fine")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestChecker_NormalizesInput(t *testing.T) {
	checker := newChecker(t,
		blocklist.Entry{Phrase: "forbidden phrase", Severity: blocklist.SeverityBlock},
	)

	cases := []string{
		"FORBIDDEN PHRASE",
		"forbídden phrasé",
		"forbidden, phrase!",
	}
	for _, text := range cases {
		res, err := checker.Check(context.Background(), text)
		require.NoError(t, err)
		assert.False(t, res.Allowed, "expected %q to match", text)
	}
}

func TestChecker_SingleWordMatchesWholeTokensOnly(t *testing.T) {
	checker := newChecker(t,
		blocklist.Entry{Phrase: "spam", Severity: blocklist.SeverityBlock},
	)

	res, err := checker.Check(context.Background(), "I like spamalot the musical")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = checker.Check(context.Background(), "buy my spam now")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestChecker_CleanTextAllowed(t *testing.T) {
	checker := newChecker(t,
		blocklist.Entry{Phrase: "blocked term", Severity: blocklist.SeverityBlock},
	)

	res, err := checker.Check(context.Background(), "hello, great weather today")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestChecker_LazyLoadErrorSurfaces(t *testing.T) {
	boom := errors.New("store unreachable")
	checker := blocklist.NewChecker(logrus.New(), &failingStore{err: boom})

	res, err := checker.Check(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, res.Allowed, "checker reports allow on error; policy is the caller's")
}

func TestChecker_ReloadSwapsSnapshot(t *testing.T) {
	store := blocklist.NewMemoryStore([]blocklist.Entry{
		{Phrase: "old", Severity: blocklist.SeverityBlock},
	})
	checker := blocklist.NewChecker(logrus.New(), store)

	count, err := checker.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	res, err := checker.Check(context.Background(), "old news")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestChecker_CheckSnapshotNeverTouchesStore(t *testing.T) {
	checker := blocklist.NewChecker(logrus.New(), &failingStore{err: errors.New("must not be called")})

	res := checker.CheckSnapshot("anything at all")
	assert.True(t, res.Allowed)
}

func TestChecker_ConcurrentChecksDuringReload(t *testing.T) {
	checker := newChecker(t,
		blocklist.Entry{Phrase: "banned", Severity: blocklist.SeverityBlock},
	)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				res, err := checker.Check(context.Background(), "totally banned text")
				assert.NoError(t, err)
				assert.False(t, res.Allowed)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = checker.Reload(context.Background())
		}()
	}
	wg.Wait()
}

func TestMemoryStoreFromJSON(t *testing.T) {
	store, err := blocklist.NewMemoryStoreFromJSON(
		`[{"phrase":"bad phrase","severity":"block"},{"phrase":"meh","severity":"warn","language":"en"}]`,
	)
	require.NoError(t, err)

	entries, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, blocklist.SeverityBlock, entries[0].Severity)
	assert.Equal(t, "en", entries[1].Language)

	_, err = blocklist.NewMemoryStoreFromJSON(`{not json`)
	assert.Error(t, err)
}

func TestEntriesFromSettings(t *testing.T) {
	entries, err := blocklist.EntriesFromSettings([]map[string]interface{}{
		{"phrase": "scam alert", "severity": "block"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "scam alert", entries[0].Phrase)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cafe con leche", blocklist.Normalize("Café, con LECHÉ!"))
	assert.Equal(t, "", blocklist.Normalize("  \t\n "))
	assert.Equal(t, "a b", blocklist.Normalize("a---b"))
}
