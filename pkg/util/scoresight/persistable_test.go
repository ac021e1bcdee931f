package scoresight

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	in := leagueFixture()
	in[0].HomeShotsOnTarget, in[0].AwayShotsOnTarget = 7, 3
	n, err := ImportMatches(db, in)
	require.NoError(t, err)
	assert.Equal(t, len(in), n)

	// importing again replaces rather than duplicates
	_, err = ImportMatches(db, in)
	require.NoError(t, err)

	out, err := LoadMatches(db)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	first := out[0]
	assert.Equal(t, in[0].ID, first.ID)
	assert.Equal(t, day(2023, 8, 12), first.Date)
	assert.Equal(t, "2023/2024", first.Season)
	assert.Equal(t, 7, first.HomeShotsOnTarget)
	assert.Equal(t, -1, first.HomeCorners)
	assert.Equal(t, ResultHome, first.Result)

	store, err := LoadMatchStore(context.Background(), &SQLiteSource{DB: db})
	require.NoError(t, err)
	assert.Equal(t, len(in), store.Len())
}

func TestDatabaseSaveExistsDelete(t *testing.T) {
	db, err := OpenDatabase(":memory:")
	require.NoError(t, err)
	defer db.Close()

	m := NewMatch(day(2024, 3, 2), "Everton", "Fulham", 1, 0)
	require.NoError(t, db.CreateTable(m))
	require.NoError(t, db.Save(m))

	ok, err := db.Exists(m)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded := &Match{}
	require.NoError(t, db.FindByPrimaryKey(loaded, m.GetPrimaryKey()))
	assert.Equal(t, "Everton", loaded.HomeTeam)

	all, err := db.FindAll(&Match{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, db.Delete(m))
	ok, err = db.Exists(m)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteSourceMissingFile(t *testing.T) {
	src := NewSQLiteSource(filepath.Join(t.TempDir(), "none.db"))
	_, err := src.Load(context.Background())
	assert.True(t, errors.Is(err, ErrSourceNotFound))
}

func TestSQLiteSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoresight.db")
	db, err := OpenDatabase(path)
	require.NoError(t, err)
	_, err = ImportMatches(db, SyntheticMatches())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	matches, err := NewSQLiteSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, matches, len(SyntheticMatches()))
}
