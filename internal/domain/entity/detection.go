package entity

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// AnnotatedImagePrefix схема data-URL, которой дополняется картинка от бэкенда
const AnnotatedImagePrefix = "data:image/jpeg;base64,"

// Detection — одна запись из списка бэкенда. Форма записи ядром не интерпретируется,
// запись хранится как есть и так же сериализуется обратно.
type Detection struct {
	Raw json.RawMessage
}

// DetectionInfo — поля, которые бэкенд обычно присылает для найденного объекта.
type DetectionInfo struct {
	ClassName  string    `json:"class_name"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

// UnmarshalJSON сохраняет копию исходной записи
func (d *Detection) UnmarshalJSON(data []byte) error {
	d.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON отдаёт запись без изменений
func (d Detection) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("null"), nil
	}
	return d.Raw, nil
}

// Describe пытается прочитать запись как DetectionInfo.
// Используется только для отображения; ok=false, если форма другая.
func (d Detection) Describe() (info DetectionInfo, ok bool) {
	raw := bytes.TrimSpace(d.Raw)
	if len(raw) == 0 || raw[0] != '{' {
		return DetectionInfo{}, false
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return DetectionInfo{}, false
	}
	return info, info.ClassName != ""
}

// DetectionResult итог успешного запроса.
type DetectionResult struct {
	Detections     []Detection // порядок как в ответе бэкенда
	PlasticCount   int         // количество найденных объектов, не меньше 0
	AnnotatedImage string      // data-URL картинки с разметкой
}

// NewDetectionResult собирает результат из полей ответа бэкенда.
func NewDetectionResult(detections []Detection, count int, annotatedB64 string) DetectionResult {
	if detections == nil {
		detections = []Detection{}
	}
	if count < 0 {
		count = 0
	}
	return DetectionResult{
		Detections:     detections,
		PlasticCount:   count,
		AnnotatedImage: AnnotatedImagePrefix + annotatedB64,
	}
}

// AnnotatedJPEG декодирует картинку из data-URL.
func (r DetectionResult) AnnotatedJPEG() ([]byte, error) {
	payload, found := strings.CutPrefix(r.AnnotatedImage, AnnotatedImagePrefix)
	if !found {
		return nil, errors.New("annotated image is not a jpeg data url")
	}
	if payload == "" {
		return nil, errors.New("annotated image is empty")
	}
	return base64.StdEncoding.DecodeString(payload)
}
