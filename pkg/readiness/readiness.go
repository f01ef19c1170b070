// Package readiness моделирует жизненный цикл сервиса явным состоянием
// вместо неявных глобальных переменных.
package readiness

import "sync/atomic"

type Status int32

const (
	Starting Status = iota
	Ready
	ShuttingDown
)

func (s Status) String() string {
	switch s {
	case Starting:
		return "starting"
	case Ready:
		return "ready"
	case ShuttingDown:
		return "shutting down"
	default:
		return "unknown"
	}
}

// State — потокобезопасное состояние готовности сервиса
type State struct {
	v atomic.Int32
}

func NewState() *State {
	return &State{}
}

func (s *State) Set(status Status) {
	s.v.Store(int32(status))
}

func (s *State) Get() Status {
	return Status(s.v.Load())
}

// IsReady сообщает, готов ли сервис принимать запросы
func (s *State) IsReady() bool {
	return s.Get() == Ready
}
