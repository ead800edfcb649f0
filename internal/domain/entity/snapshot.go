package entity

import "encoding/json"

// FileInfo описание выбранного файла без содержимого
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
}

// Snapshot — неизменяемая копия состояния сессии, из которой строится страница.
type Snapshot struct {
	SessionID string
	Version   uint64 // растёт с каждым изменением сессии
	State     RequestState
	File      *FileInfo
}

// Loading сообщает, что запрос в полёте
func (s Snapshot) Loading() bool {
	_, ok := s.State.(Loading)
	return ok
}

// CanSubmit — кнопка отправки активна: файл выбран и запроса в полёте нет.
func (s Snapshot) CanSubmit() bool {
	return s.File != nil && !s.Loading()
}

// Result возвращает результат, если запрос завершился успешно
func (s Snapshot) Result() (DetectionResult, bool) {
	if st, ok := s.State.(Succeeded); ok {
		return st.Result, true
	}
	return DetectionResult{}, false
}

// Failure возвращает текст ошибки, если запрос завершился неудачей
func (s Snapshot) Failure() (string, bool) {
	if st, ok := s.State.(Failed); ok {
		return st.Message, true
	}
	return "", false
}

type snapshotJSON struct {
	SessionID string      `json:"session_id"`
	Version   uint64      `json:"version"`
	State     StateKind   `json:"state"`
	File      *FileInfo   `json:"file"`
	CanSubmit bool        `json:"can_submit"`
	Result    *resultJSON `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

type resultJSON struct {
	PlasticCount   int         `json:"plastic_count"`
	Detections     []Detection `json:"plastic_detections"`
	AnnotatedImage string      `json:"annotated_image"`
}

// MarshalJSON кодирует снимок для /api/state и websocket
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		SessionID: s.SessionID,
		Version:   s.Version,
		State:     KindIdle,
		File:      s.File,
		CanSubmit: s.CanSubmit(),
	}
	if s.State != nil {
		out.State = s.State.Kind()
	}

	switch st := s.State.(type) {
	case Succeeded:
		out.Result = &resultJSON{
			PlasticCount:   st.Result.PlasticCount,
			Detections:     st.Result.Detections,
			AnnotatedImage: st.Result.AnnotatedImage,
		}
	case Failed:
		out.Error = st.Message
	}

	return json.Marshal(out)
}
