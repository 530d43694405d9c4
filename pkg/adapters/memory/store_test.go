package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aplus/pkg/adapters/memory"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunMatchStoreContract(t, store)
}

func TestMemoryStore_ListOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	require.NoError(t, store.Save(ctx, &domain.MatchRecord{ID: "late", FinishedAt: now}))
	require.NoError(t, store.Save(ctx, &domain.MatchRecord{ID: "early", FinishedAt: now.Add(-time.Minute)}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "early", records[0].ID)
	assert.Equal(t, "late", records[1].ID)
}
