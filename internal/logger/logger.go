package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Logger пишет сообщения уровней info/warning/error в stdout/stderr
// и, если задан каталог, дополнительно в файлы info.log, warning.log, error.log.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	files      []*os.File
	mu         sync.Mutex
}

// New создаёт логгер. Пустой dir — только консоль.
func New(dir string) (*Logger, error) {
	var infoOut, warningOut, errorOut io.Writer = os.Stdout, os.Stdout, os.Stderr

	l := &Logger{}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}

		infoFile, err := l.openLogFile(filepath.Join(dir, "info.log"))
		if err != nil {
			return nil, err
		}
		warningFile, err := l.openLogFile(filepath.Join(dir, "warning.log"))
		if err != nil {
			l.Close()
			return nil, err
		}
		errorFile, err := l.openLogFile(filepath.Join(dir, "error.log"))
		if err != nil {
			l.Close()
			return nil, err
		}

		infoOut = io.MultiWriter(os.Stdout, infoFile)
		warningOut = io.MultiWriter(os.Stdout, warningFile)
		errorOut = io.MultiWriter(os.Stderr, errorFile)
	}

	l.setup(infoOut, warningOut, errorOut)
	return l, nil
}

// Discard возвращает логгер, который ничего не пишет
func Discard() *Logger {
	l := &Logger{}
	l.setup(io.Discard, io.Discard, io.Discard)
	return l
}

func (l *Logger) setup(infoOut, warningOut, errorOut io.Writer) {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	l.infoLog = log.New(infoOut, "INFO    ", flags)
	l.warningLog = log.New(warningOut, "WARNING ", flags)
	l.errorLog = log.New(errorOut, "ERROR   ", flags)
}

// openLogFile открывает или создаёт файл лога для дозаписи
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", filename, err)
	}
	l.files = append(l.files, file)
	return file, nil
}

// Info пишет сообщение уровня info
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Printf(format, v...)
}

// Warning пишет сообщение уровня warning
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Printf(format, v...)
}

// Error пишет сообщение уровня error
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Printf(format, v...)
}

// Close закрывает файлы логов
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
