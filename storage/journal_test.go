package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJournalOrdersEntriesPerRun(t *testing.T) {
	j := NewJournal(NewMemDB())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	j.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 12; i++ {
		require.NoError(t, j.Record(Entry{RunID: "run-b", Step: "set_prices", Symbol: "DAI", Function: "oracle::set_asset_custom_price", Hash: "0x1", Success: true}))
	}
	require.NoError(t, j.Record(Entry{RunID: "run-a", Step: "create_tokens", Function: "mock_underlying_token_factory::create_token", Hash: "0x2", Success: true}))

	entries, err := j.Entries("run-b")
	require.NoError(t, err)
	require.Len(t, entries, 12)
	for i, e := range entries {
		require.Equal(t, uint64(i), e.Seq)
	}

	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "run-b", runs[0].RunID)
	require.Equal(t, 12, runs[0].Entries)
	require.Equal(t, "run-a", runs[1].RunID)
}

func TestJournalRejectsMissingRunID(t *testing.T) {
	j := NewJournal(NewMemDB())
	require.Error(t, j.Record(Entry{Step: "x"}))
	require.Error(t, j.Record(Entry{RunID: "a/b"}))
}

func TestJournalResumesSequenceAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal")
	db, err := NewLevelDB(path)
	require.NoError(t, err)
	j := NewJournal(db)
	require.NoError(t, j.Record(Entry{RunID: "r1", Step: "init_reserves", Hash: "0xa"}))
	require.NoError(t, j.Record(Entry{RunID: "r1", Step: "init_reserves", Hash: "0xb"}))
	require.NoError(t, db.Close())

	db, err = NewLevelDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	j = NewJournal(db)
	require.NoError(t, j.Record(Entry{RunID: "r1", Step: "configure_reserves", Hash: "0xc"}))

	entries, err := j.Entries("r1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "0xc", entries[2].Hash)
	require.Equal(t, uint64(2), entries[2].Seq)
}

func TestDatabaseGetMissing(t *testing.T) {
	mem := NewMemDB()
	_, err := mem.Get([]byte("nope"))
	require.ErrorIs(t, err, ErrNotFound)

	ldb, err := NewLevelDB(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ldb.Close() })
	_, err = ldb.Get([]byte("nope"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIteratePrefixStopsEarly(t *testing.T) {
	for name, db := range map[string]Database{"mem": NewMemDB(), "level": mustLevel(t), "sqlite": mustSQLite(t)} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Put([]byte("a/1"), []byte("x")))
			require.NoError(t, db.Put([]byte("a/2"), []byte("y")))
			require.NoError(t, db.Put([]byte("b/1"), []byte("z")))
			var keys []string
			require.NoError(t, db.Iterate([]byte("a/"), func(k, _ []byte) bool {
				keys = append(keys, string(k))
				return true
			}))
			require.Equal(t, []string{"a/1", "a/2"}, keys)

			count := 0
			require.NoError(t, db.Iterate(nil, func(_, _ []byte) bool {
				count++
				return false
			}))
			require.Equal(t, 1, count)
		})
	}
}

func mustLevel(t *testing.T) Database {
	t.Helper()
	db, err := NewLevelDB(filepath.Join(t.TempDir(), "iter"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustSQLite(t *testing.T) Database {
	t.Helper()
	db, err := OpenDatabase("sqlite://" + filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLDBRoundTrip(t *testing.T) {
	db := mustSQLite(t)
	_, err := db.Get([]byte("journal/x"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Put([]byte("journal/x"), []byte("one")))
	require.NoError(t, db.Put([]byte("journal/x"), []byte("two")))
	got, err := db.Get([]byte("journal/x"))
	require.NoError(t, err)
	require.Equal(t, "two", string(got))

	// LIKE wildcards in the prefix match literally and case is significant.
	require.NoError(t, db.Put([]byte("run_1/a"), []byte("1")))
	require.NoError(t, db.Put([]byte("runX1/a"), []byte("2")))
	require.NoError(t, db.Put([]byte("RUN_1/b"), []byte("3")))
	var keys []string
	require.NoError(t, db.Iterate([]byte("run_1/"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	}))
	require.Equal(t, []string{"run_1/a"}, keys)
}

func TestJournalOverSQLite(t *testing.T) {
	j := NewJournal(mustSQLite(t))
	for i := 0; i < 3; i++ {
		require.NoError(t, j.Record(Entry{RunID: "0b6f", Step: "set_prices", Hash: "0x1"}))
	}
	entries, err := j.Entries("0b6f")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, uint64(2), entries[2].Seq)
}

func TestOpenDatabaseTargets(t *testing.T) {
	_, err := OpenDatabase("  ")
	require.Error(t, err)

	db, err := OpenDatabase(filepath.Join(t.TempDir(), "level"))
	require.NoError(t, err)
	require.IsType(t, &LevelDB{}, db)
	require.NoError(t, db.Close())
}
