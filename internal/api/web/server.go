package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	app "plastic-detect/internal/application"
	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/infrastructure/vision"
	"plastic-detect/internal/logger"
)

const (
	sessionCookie  = "session"
	maxUploadBytes = 50 << 20

	// DefaultPongWait должен быть больше периода ping у ViewerRegistry
	DefaultPongWait = 60 * time.Second
)

type ctxKey struct{}

// ViewerRegistry подписка websocket-соединений на снимки сессии
type ViewerRegistry interface {
	// Register отправляет соединению снимок, полученный из snapshot после подписки
	Register(ctx context.Context, sessionID string, conn *websocket.Conn, snapshot func() entity.Snapshot)
	Unregister(ctx context.Context, sessionID string, conn *websocket.Conn)
}

// Server веб-страница поверх UploadController
type Server struct {
	uploads   *app.UploadController
	viewers   ViewerRegistry
	previewer *vision.Previewer
	logger    *logger.Logger
	upgrader  websocket.Upgrader
	pongWait  time.Duration
}

// NewServer создаёт сервер. viewers может быть nil — тогда /ws недоступен.
// Соединение /ws закрывается, если за pongWait от клиента ничего не пришло;
// pongWait <= 0 означает DefaultPongWait.
func NewServer(uploads *app.UploadController, viewers ViewerRegistry, previewer *vision.Previewer, log *logger.Logger, pongWait time.Duration) *Server {
	if pongWait <= 0 {
		pongWait = DefaultPongWait
	}
	return &Server{
		uploads:   uploads,
		viewers:   viewers,
		previewer: previewer,
		logger:    log,
		pongWait:  pongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler регистрирует маршруты и оборачивает их в middleware сессии
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return s.sessionMiddleware(mux)
}

// sessionMiddleware выдаёт каждому браузеру свой ID сессии в cookie
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				sessionID = id.String()
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sessionID)))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}
