package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"plastic-detect/internal/domain/entity"
)

// handleIndex отрисовывает страницу по текущему снимку сессии
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, err := s.uploads.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.logger.Error("Error loading session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, buildPage(snap, s.previewer)); err != nil {
		s.logger.Error("Error rendering page: %v", err)
	}
}

// handleSelect POST /select: поле file, пустое поле — файл не выбран
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var selected *entity.SelectedFile
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		selected = nil
	case err != nil:
		respondError(w, "Failed to read file", http.StatusBadRequest)
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, "Failed to read file", http.StatusInternalServerError)
			return
		}
		selected = &entity.SelectedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	snap, err := s.uploads.SelectFile(r.Context(), sessionID(r), selected)
	if err != nil {
		s.logger.Error("Error selecting file: %v", err)
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.respondSnapshot(w, r, snap)
}

// handleSubmit POST /submit: отказ без файла или во время запроса молча игнорируется
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	_, err := s.uploads.Submit(r.Context(), id)
	switch {
	case errors.Is(err, entity.ErrNoFileSelected), errors.Is(err, entity.ErrRequestInFlight):
		s.logger.Info("Session %s: submit ignored: %v", id, err)
	case err != nil:
		s.logger.Error("Error submitting: %v", err)
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	snap, err := s.uploads.Snapshot(r.Context(), id)
	if err != nil {
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.respondSnapshot(w, r, snap)
}

// handleState GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.uploads.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, snap, http.StatusOK)
}

// handleWebsocket GET /ws: подписка страницы на изменения своей сессии
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.viewers == nil {
		http.NotFound(w, r)
		return
	}

	id := sessionID(r)
	connection, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warning("WebSocket upgrade error: %v", err)
		return
	}
	connection.SetReadLimit(512)
	_ = connection.SetReadDeadline(time.Now().Add(s.pongWait))
	connection.SetPongHandler(func(string) error {
		return connection.SetReadDeadline(time.Now().Add(s.pongWait))
	})

	// Контекст запроса живёт, пока работает обработчик
	ctx := r.Context()
	s.viewers.Register(ctx, id, connection, func() entity.Snapshot {
		snap, err := s.uploads.Snapshot(ctx, id)
		if err != nil {
			s.logger.Error("Session %s: snapshot for viewer: %v", id, err)
			return entity.NewSession(id).Snapshot()
		}
		return snap
	})
	defer s.viewers.Unregister(ctx, id, connection)

	for {
		if _, _, err := connection.ReadMessage(); err != nil {
			return
		}
		_ = connection.SetReadDeadline(time.Now().Add(s.pongWait))
	}
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, snap entity.Snapshot) {
	if wantsJSON(r) {
		respondJSON(w, snap, http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
