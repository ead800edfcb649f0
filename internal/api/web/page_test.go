package web

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plastic-detect/internal/domain/entity"
)

func TestBuildPage_PanelsFollowState(t *testing.T) {
	file := &entity.FileInfo{Name: "a.jpg", Size: 4}

	idle := buildPage(entity.Snapshot{State: entity.Idle{}}, nil)
	require.False(t, idle.CanSubmit)
	require.Nil(t, idle.Result)
	require.Empty(t, idle.Error)

	loading := buildPage(entity.Snapshot{State: entity.Loading{}, File: file}, nil)
	require.True(t, loading.Loading)
	require.False(t, loading.CanSubmit)
	require.Equal(t, "Detecting…", loading.ButtonLabel)
	require.Nil(t, loading.Result)

	failed := buildPage(entity.Snapshot{State: entity.Failed{Message: "Request failed: 502"}, File: file}, nil)
	require.True(t, failed.CanSubmit)
	require.Equal(t, "Run Detection", failed.ButtonLabel)
	require.Equal(t, "Request failed: 502", failed.Error)
	require.Nil(t, failed.Result)

	result := entity.NewDetectionResult(nil, 0, "Zm9v")
	succeeded := buildPage(entity.Snapshot{State: entity.Succeeded{Result: result}, File: file}, nil)
	require.Empty(t, succeeded.Error)
	require.NotNil(t, succeeded.Result)
	require.Equal(t, 0, succeeded.Result.PlasticCount)
	require.Empty(t, succeeded.Result.Detections)
}
