package clock

import "time"

// Clock абстрагирует время, чтобы длительность смен была проверяема в тестах.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System возвращает часы реального времени.
func System() Clock {
	return systemClock{}
}

// Mock — управляемые часы для тестов.
type Mock struct {
	current time.Time
}

func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

func (m *Mock) Now() time.Time {
	return m.current
}

func (m *Mock) Set(t time.Time) {
	m.current = t
}

func (m *Mock) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}
