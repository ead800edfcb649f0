package entity

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrNoFileSelected отправка без выбранного файла
	ErrNoFileSelected = errors.New("no file selected")
	// ErrRequestInFlight отправка, пока предыдущий запрос ещё выполняется
	ErrRequestInFlight = errors.New("request already in flight")
)

// SelectedFile выбранное пользователем изображение
type SelectedFile struct {
	Name        string // имя файла, как его прислал клиент
	ContentType string // MIME-тип, может быть пустым
	Data        []byte // содержимое файла
}

// versions общий счётчик версий: у пересозданной сессии версия не начинается заново
var versions atomic.Uint64

// Session хранит состояние одной страницы (вкладки браузера или чата).
// Все изменения проходят под мьютексом сессии.
type Session struct {
	ID string

	mu         sync.Mutex
	file       *SelectedFile
	state      RequestState
	version    uint64
	lastActive time.Time
}

// NewSession создаёт сессию в состоянии Idle без выбранного файла
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		state:      Idle{},
		lastActive: time.Now(),
	}
}

// SelectFile заменяет выбранный файл. nil означает, что файл не выбран.
// Состояние запроса не меняется, в том числе во время Loading.
func (s *Session) SelectFile(file *SelectedFile) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = file
	s.touchLocked()
	return s.snapshotLocked()
}

// BeginSubmit атомарно проверяет предусловия отправки и переводит сессию в Loading.
// Возвращает файл, с которым нужно выполнить запрос.
func (s *Session) BeginSubmit() (*SelectedFile, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil, s.snapshotLocked(), ErrNoFileSelected
	}
	if _, loading := s.state.(Loading); loading {
		return nil, s.snapshotLocked(), ErrRequestInFlight
	}

	s.state = Loading{}
	s.touchLocked()
	return s.file, s.snapshotLocked(), nil
}

// Settle завершает запрос итоговым состоянием.
// Срабатывает только из Loading и только с Succeeded или Failed; ok=false иначе.
func (s *Session) Settle(state RequestState) (snap Snapshot, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); !loading || state == nil || !IsSettled(state) {
		return s.snapshotLocked(), false
	}

	s.state = state
	s.touchLocked()
	return s.snapshotLocked(), true
}

// State возвращает текущее состояние запроса
func (s *Session) State() RequestState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot возвращает копию состояния для отрисовки
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// IdleSince сообщает, что сессия не менялась с момента cutoff и не ждёт ответа детекции
func (s *Session) IdleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(Loading); loading {
		return false
	}
	return s.lastActive.Before(cutoff)
}

func (s *Session) touchLocked() {
	s.version = versions.Add(1)
	s.lastActive = time.Now()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		Version:   s.version,
		State:     s.state,
	}
	if s.file != nil {
		snap.File = &FileInfo{
			Name:        s.file.Name,
			ContentType: s.file.ContentType,
			Size:        len(s.file.Data),
		}
	}
	return snap
}
