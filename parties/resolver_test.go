package parties_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/parties"
)

func newResolver(t *testing.T) (*parties.Resolver, databases.PartyDatabase) {
	t.Helper()
	s, err := databases.NewFileStore(t.TempDir())
	require.NoError(t, err)
	db := databases.NewPartyDatabase(s)
	r := parties.NewResolver(db)
	r.Now = func() time.Time { return time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC) }
	return r, db
}

func TestResolveParty_MatchesNormalizedNameAndBackfills(t *testing.T) {
	r, db := newResolver(t)
	ctx := context.Background()

	first, err := r.ResolveParty(ctx, "Jane Doe", "", "actor1")
	require.NoError(t, err)

	second, err := r.ResolveParty(ctx, " jane doe ", "TG-9", "actor1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	p, err := db.FindOne(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "TG-9", p.ExternalIdentifier)
	assert.Empty(t, p.History)
	assert.Equal(t, "actor1", p.CreatedBy)
}

func TestResolveParty_Idempotent(t *testing.T) {
	r, db := newResolver(t)
	ctx := context.Background()

	a, err := r.ResolveParty(ctx, "John Roe", "X-1", "actor1")
	require.NoError(t, err)
	b, err := r.ResolveParty(ctx, "JOHN ROE", "X-1", "actor2")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	all, err := db.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveParty_MatchesIdentifierWhenNameDiffers(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	a, err := r.ResolveParty(ctx, "Jonathan Roe", "tg-42", "actor1")
	require.NoError(t, err)
	b, err := r.ResolveParty(ctx, "Johnny Roe", " TG-42 ", "actor1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveParty_NeverOverwritesIdentifier(t *testing.T) {
	r, db := newResolver(t)
	ctx := context.Background()

	id, err := r.ResolveParty(ctx, "Jane Doe", "TG-1", "actor1")
	require.NoError(t, err)
	again, err := r.ResolveParty(ctx, "Jane Doe", "TG-2", "actor1")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	p, err := db.FindOne(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "TG-1", p.ExternalIdentifier)
}

func TestResolveParty_EmptyIdentifierDoesNotMatchBlankIdentifiers(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	a, err := r.ResolveParty(ctx, "Jane Doe", "", "actor1")
	require.NoError(t, err)
	b, err := r.ResolveParty(ctx, "Mary Major", "", "actor1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestResolveParty_RequiresName(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.ResolveParty(context.Background(), "   ", "TG-1", "actor1")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestResolveParty_ConcurrentSameNameCreatesOne(t *testing.T) {
	r, db := newResolver(t)
	ctx := context.Background()

	ids := make([]string, 20)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.ResolveParty(ctx, "Jane Doe", "", "actor1")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	all, err := db.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAppendHistory(t *testing.T) {
	r, db := newResolver(t)
	ctx := context.Background()

	id, err := r.ResolveParty(ctx, "Jane Doe", "", "actor1")
	require.NoError(t, err)

	r.AppendHistory(ctx, id, models.PartyHistoryEntry{CaseID: "c1", Type: "case_created"})
	r.AppendHistory(ctx, id, models.PartyHistoryEntry{CaseID: "c1", Type: "verdict", Value: "guilty", Status: models.StatusCompleted})

	p, err := db.FindOne(ctx, id)
	require.NoError(t, err)
	require.Len(t, p.History, 2)
	assert.Equal(t, "verdict", p.History[0].Type)
	assert.Equal(t, "case_created", p.History[1].Type)
	assert.False(t, p.History[0].Date.IsZero())
}

func TestAppendHistory_MissingPartyIsNoop(t *testing.T) {
	r, db := newResolver(t)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		r.AppendHistory(ctx, "does-not-exist", models.PartyHistoryEntry{CaseID: "c1", Type: "verdict"})
		r.AppendHistory(ctx, "", models.PartyHistoryEntry{CaseID: "c1", Type: "verdict"})
	})

	all, err := db.Find(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSearch(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	for _, n := range []string{"Zoe Smith", "adam smith", "Bob Jones"} {
		_, err := r.ResolveParty(ctx, n, "", "actor1")
		require.NoError(t, err)
	}
	_, err := r.ResolveParty(ctx, "Carl Case", "SM-7", "actor1")
	require.NoError(t, err)

	found, err := r.Search(ctx, "SM")
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "adam smith", found[0].Name)
	assert.Equal(t, "Carl Case", found[1].Name)
	assert.Equal(t, "Zoe Smith", found[2].Name)

	all, err := r.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
