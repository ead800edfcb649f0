package entity

// StateKind дискриминант состояния запроса
type StateKind string

const (
	KindIdle      StateKind = "idle"      // Файл ещё не отправлялся
	KindLoading   StateKind = "loading"   // Запрос в полёте
	KindSucceeded StateKind = "succeeded" // Получен результат детекции
	KindFailed    StateKind = "failed"    // Запрос завершился ошибкой
)

// RequestState — закрытое множество состояний запроса.
// Реализуется только типами Idle, Loading, Succeeded и Failed,
// поэтому результат и ошибка не могут существовать одновременно.
type RequestState interface {
	Kind() StateKind
	sealed()
}

// Idle начальное состояние
type Idle struct{}

// Loading запрос отправлен, ответа ещё нет
type Loading struct{}

// Succeeded запрос завершён успешно
type Succeeded struct {
	Result DetectionResult
}

// Failed запрос завершён ошибкой
type Failed struct {
	Message string
}

func (Idle) Kind() StateKind      { return KindIdle }
func (Loading) Kind() StateKind   { return KindLoading }
func (Succeeded) Kind() StateKind { return KindSucceeded }
func (Failed) Kind() StateKind    { return KindFailed }

func (Idle) sealed()      {}
func (Loading) sealed()   {}
func (Succeeded) sealed() {}
func (Failed) sealed()    {}

// IsSettled сообщает, что состояние является итогом запроса.
func IsSettled(state RequestState) bool {
	switch state.(type) {
	case Succeeded, Failed:
		return true
	default:
		return false
	}
}
