package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/aplus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractRecord(id string, score int) *domain.MatchRecord {
	return &domain.MatchRecord{
		ID:           id,
		Map:          "contract",
		RoundsPlayed: 2,
		Standings: []domain.Standing{
			{PlayerID: 1, Name: "Ann", Score: score, WonOverall: true},
			{PlayerID: 2, Name: "Bo", Score: score - 10},
		},
		FinishedAt: time.Now(),
	}
}

// RunMatchStoreContract runs a suite of tests to verify that a MatchStore implementation
// adheres to the defined interface contract.
func RunMatchStoreContract(t *testing.T, store MatchStore) {
	ctx := context.Background()
	matchID := "contract-match-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := contractRecord(matchID, 90)
		require.NoError(t, store.Save(ctx, rec), "Save should not return error")

		loaded, err := store.Load(ctx, matchID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.Map, loaded.Map)
		assert.Equal(t, rec.Standings, loaded.Standings)

		// The stored copy is isolated from the caller's record.
		rec.Standings[0].Score = 0
		loaded, err = store.Load(ctx, matchID)
		require.NoError(t, err)
		assert.Equal(t, 90, loaded.Standings[0].Score)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+matchID)
		assert.ErrorIs(t, err, domain.ErrMatchNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractRecord(matchID, 50)))
		require.NoError(t, store.Delete(ctx, matchID), "Delete should not return error")

		_, err := store.Load(ctx, matchID)
		assert.ErrorIs(t, err, domain.ErrMatchNotFound, "Load after Delete should return ErrMatchNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := matchID+"-1", matchID+"-2"
		require.NoError(t, store.Save(ctx, contractRecord(id1, 40)))
		require.NoError(t, store.Save(ctx, contractRecord(id2, 60)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		records, err := store.List(ctx)
		require.NoError(t, err)
		var ids []string
		for _, r := range records {
			ids = append(ids, r.ID)
		}
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
