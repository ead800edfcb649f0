package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/domain/port"
)

const (
	predictPath = "/predict"
	healthPath  = "/health"
	fileField   = "file"

	defaultFileName = "image.jpg"
)

// StatusError ответ бэкенда с кодом вне 2xx. Тело ответа не читается.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed: %d", e.StatusCode)
}

// Client HTTP-клиент сервиса детекции
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент. Таймаута у запроса нет, если его не задаст httpClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type predictResponse struct {
	PlasticDetections []entity.Detection `json:"plastic_detections"`
	PlasticCount      *int               `json:"plastic_count"`
	AnnotatedImageB64 string             `json:"annotated_image_b64"`
}

// Detect отправляет изображение на POST /predict одной попыткой
func (c *Client) Detect(ctx context.Context, file *entity.SelectedFile) (*entity.DetectionResult, error) {
	if file == nil {
		return nil, errors.New("no file to send")
	}

	body, contentType, err := buildPayload(file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	// Ошибка транспорта уходит пользователю как есть, без обёртки
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return decodeResponse(resp.Body)
}

// Health проверяет GET /health
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detection service unhealthy: %d", resp.StatusCode)
	}

	return nil
}

// buildPayload собирает multipart с одной частью file
func buildPayload(file *entity.SelectedFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	name := file.Name
	if name == "" {
		name = defaultFileName
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// decodeResponse разбирает JSON-ответ; отсутствующие поля получают значения по умолчанию.
// Тело должно целиком быть одним JSON-объектом.
func decodeResponse(r io.Reader) (*entity.DetectionResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("decode response: body is not a JSON object")
	}

	var payload predictResponse
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	count := 0
	if payload.PlasticCount != nil {
		count = *payload.PlasticCount
	}

	result := entity.NewDetectionResult(payload.PlasticDetections, count, payload.AnnotatedImageB64)
	return &result, nil
}

// Проверка реализации интерфейса
var _ port.Detector = (*Client)(nil)
