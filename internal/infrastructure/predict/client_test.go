package predict

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"plastic-detect/internal/domain/entity"
)

func newBackend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testFile() *entity.SelectedFile {
	return &entity.SelectedFile{Name: "beach.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}
}

func TestClient_DetectSendsMultipartFile(t *testing.T) {
	var (
		method, path, fileName, partType string
		content                          []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path

		f, header, err := r.FormFile("file")
		if err == nil {
			defer f.Close()
			fileName = header.Filename
			partType = header.Header.Get("Content-Type")
			content, _ = io.ReadAll(f)
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", nil)
	_, err := client.Detect(context.Background(), testFile())
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/predict", path)
	require.Equal(t, "beach.jpg", fileName)
	require.Equal(t, "image/jpeg", partType)
	require.Equal(t, []byte("jpeg-bytes"), content)
}

func TestClient_DetectSuccess(t *testing.T) {
	srv := newBackend(t, http.StatusOK,
		`{"plastic_count": 3, "plastic_detections": [{"class_name":"Plastic"},{},{}], "annotated_image_b64": "Zm9v"}`)

	result, err := NewClient(srv.URL, nil).Detect(context.Background(), testFile())
	require.NoError(t, err)
	require.Equal(t, 3, result.PlasticCount)
	require.Len(t, result.Detections, 3)
	require.Equal(t, "data:image/jpeg;base64,Zm9v", result.AnnotatedImage)
}

func TestClient_DetectEmptyObject(t *testing.T) {
	srv := newBackend(t, http.StatusOK, `{}`)

	result, err := NewClient(srv.URL, nil).Detect(context.Background(), testFile())
	require.NoError(t, err)
	require.Equal(t, 0, result.PlasticCount)
	require.NotNil(t, result.Detections)
	require.Empty(t, result.Detections)
	require.Equal(t, entity.AnnotatedImagePrefix, result.AnnotatedImage)
}

func TestClient_DetectNullFields(t *testing.T) {
	srv := newBackend(t, http.StatusCreated,
		`{"plastic_count": null, "plastic_detections": null, "annotated_image_b64": null}`)

	result, err := NewClient(srv.URL, nil).Detect(context.Background(), testFile())
	require.NoError(t, err)
	require.Equal(t, 0, result.PlasticCount)
	require.Empty(t, result.Detections)
}

func TestClient_DetectStatusError(t *testing.T) {
	srv := newBackend(t, http.StatusInternalServerError, `{"plastic_count": 1}`)

	_, err := NewClient(srv.URL, nil).Detect(context.Background(), testFile())
	require.Error(t, err)
	require.Equal(t, "Request failed: 500", err.Error())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 500, statusErr.StatusCode)
}

func TestClient_DetectMalformedBody(t *testing.T) {
	cases := map[string]string{
		"not json":         `<html>oops</html>`,
		"array":            `[1,2,3]`,
		"null":             `null`,
		"wrong fields":     `{"plastic_count": "three"}`,
		"trailing garbage": `{"plastic_count": 2, "annotated_image_b64": "Zm9v"} <html>oops`,
		"two objects":      `{"plastic_count": 1} {"plastic_count": 2}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newBackend(t, http.StatusOK, body)

			_, err := NewClient(srv.URL, nil).Detect(context.Background(), testFile())
			require.Error(t, err)
			require.Contains(t, err.Error(), "decode response")
		})
	}
}

func TestClient_DetectTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result, err := NewClient(url, nil).Detect(context.Background(), testFile())
	require.Nil(t, result)

	var urlErr *neturl.Error
	require.ErrorAs(t, err, &urlErr)
	require.Equal(t, urlErr.Error(), err.Error())
	require.True(t, strings.HasPrefix(err.Error(), `Post "`+url+`/predict"`), err.Error())
}

func TestClient_Health(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer ok.Close()
	require.NoError(t, NewClient(ok.URL, nil).Health(context.Background()))

	down := newBackend(t, http.StatusServiceUnavailable, ``)
	require.Error(t, NewClient(down.URL, nil).Health(context.Background()))
}
