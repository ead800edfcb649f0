package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"plastic-detect/internal/domain/entity"
)

func TestMemorySessionRepository_GetCreatesOnce(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	first, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Same(t, first, second)

	other, err := repo.Get(ctx, "s2")
	require.NoError(t, err)
	require.NotSame(t, first, other)
	require.Equal(t, 2, repo.Count(ctx))
}

func TestMemorySessionRepository_EmptyID(t *testing.T) {
	repo := NewMemorySessionRepository()

	_, err := repo.Get(context.Background(), "")
	require.Error(t, err)
}

func TestMemorySessionRepository_ConcurrentGet(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Get(ctx, "shared")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, repo.Count(ctx))
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	first, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "s1"))
	require.Equal(t, 0, repo.Count(ctx))

	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotSame(t, first, again)
}

func TestMemorySessionRepository_FindDoesNotCreate(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	_, ok := repo.Find(ctx, "s1")
	require.False(t, ok)
	require.Equal(t, 0, repo.Count(ctx))

	created, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	found, ok := repo.Find(ctx, "s1")
	require.True(t, ok)
	require.Same(t, created, found)
}

func TestMemorySessionRepository_DeleteIdleKeepsLoading(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	idle, err := repo.Get(ctx, "idle")
	require.NoError(t, err)
	idle.SelectFile(&entity.SelectedFile{Name: "a.jpg"})

	busy, err := repo.Get(ctx, "busy")
	require.NoError(t, err)
	busy.SelectFile(&entity.SelectedFile{Name: "b.jpg"})
	_, _, err = busy.BeginSubmit()
	require.NoError(t, err)

	require.Empty(t, repo.DeleteIdle(ctx, time.Now().Add(-time.Hour)))
	require.Equal(t, 2, repo.Count(ctx))

	removed := repo.DeleteIdle(ctx, time.Now().Add(time.Hour))
	require.Equal(t, []string{"idle"}, removed)
	_, ok := repo.Find(ctx, "busy")
	require.True(t, ok)
	require.Equal(t, 1, repo.Count(ctx))
}
