package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDetectionResult_Defaults(t *testing.T) {
	r := NewDetectionResult(nil, -2, "")
	require.NotNil(t, r.Detections)
	require.Empty(t, r.Detections)
	require.Equal(t, 0, r.PlasticCount)
	require.Equal(t, AnnotatedImagePrefix, r.AnnotatedImage)

	_, err := r.AnnotatedJPEG()
	require.Error(t, err)
}

func TestDetectionResult_AnnotatedJPEG(t *testing.T) {
	r := NewDetectionResult(nil, 3, "Zm9v")
	require.Equal(t, "data:image/jpeg;base64,Zm9v", r.AnnotatedImage)

	data, err := r.AnnotatedJPEG()
	require.NoError(t, err)
	require.Equal(t, []byte("foo"), data)
}

func TestDetection_RoundTripKeepsRecord(t *testing.T) {
	in := `[{"class_name":"Plastic","confidence":0.91,"box":[1,2,3,4]},42]`

	var detections []Detection
	require.NoError(t, json.Unmarshal([]byte(in), &detections))
	require.Len(t, detections, 2)

	info, ok := detections[0].Describe()
	require.True(t, ok)
	require.Equal(t, "Plastic", info.ClassName)
	require.InDelta(t, 0.91, info.Confidence, 1e-9)
	require.Equal(t, []float64{1, 2, 3, 4}, info.Box)

	_, ok = detections[1].Describe()
	require.False(t, ok)

	out, err := json.Marshal(detections)
	require.NoError(t, err)
	require.JSONEq(t, in, string(out))
}

func TestSnapshot_MarshalJSON(t *testing.T) {
	snap := Snapshot{
		SessionID: "s1",
		Version:   4,
		State:     Succeeded{Result: NewDetectionResult(nil, 2, "Zm9v")},
		File:      &FileInfo{Name: "a.jpg", Size: 3},
	}

	out, err := json.Marshal(snap)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"session_id": "s1",
		"version": 4,
		"state": "succeeded",
		"file": {"name": "a.jpg", "size": 3},
		"can_submit": true,
		"result": {
			"plastic_count": 2,
			"plastic_detections": [],
			"annotated_image": "data:image/jpeg;base64,Zm9v"
		}
	}`, string(out))

	snap.State = Failed{Message: "Request failed: 500"}
	out, err = json.Marshal(snap)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"session_id": "s1",
		"version": 4,
		"state": "failed",
		"file": {"name": "a.jpg", "size": 3},
		"can_submit": true,
		"error": "Request failed: 500"
	}`, string(out))
}
