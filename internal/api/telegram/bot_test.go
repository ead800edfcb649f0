package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plastic-detect/internal/domain/entity"
)

func TestSessionKey(t *testing.T) {
	require.Equal(t, "tg:42", sessionKey(42))
	require.NotEqual(t, sessionKey(1), sessionKey(2))
}

func TestIsImage(t *testing.T) {
	require.True(t, isImage("image/png"))
	require.True(t, isImage("image/jpeg"))
	require.False(t, isImage("application/pdf"))
	require.False(t, isImage(""))
}

func TestStatusText(t *testing.T) {
	idle := statusText(entity.Snapshot{State: entity.Idle{}})
	require.Contains(t, idle, "не выбрано")
	require.Contains(t, idle, "не запускалась")

	file := &entity.FileInfo{Name: "photo.jpg", Size: 10}

	loading := statusText(entity.Snapshot{State: entity.Loading{}, File: file})
	require.Contains(t, loading, "photo.jpg")
	require.Contains(t, loading, "выполняется")

	done := statusText(entity.Snapshot{
		State: entity.Succeeded{Result: entity.NewDetectionResult(nil, 5, "")},
		File:  file,
	})
	require.Contains(t, done, "Plastic Count: 5")

	failed := statusText(entity.Snapshot{State: entity.Failed{Message: "Request failed: 503"}, File: file})
	require.Contains(t, failed, "Request failed: 503")
}
