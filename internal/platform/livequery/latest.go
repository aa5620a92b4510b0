package livequery

import "sync"

// Result es un resultado empujado por una suscripción.
type Result[T any] struct {
	Items []T
	Err   error
}

// Latest es un buzón de capacidad 1 que conserva solo el último resultado.
// Sirve de push para Subscribe cuando el consumidor (p.ej. un stream HTTP)
// puede ir más lento que las reevaluaciones.
type Latest[T any] struct {
	mu sync.Mutex
	ch chan Result[T]
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan Result[T], 1)}
}

// Push nunca bloquea: si hay un resultado sin leer, lo reemplaza.
func (l *Latest[T]) Push(items []T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-l.ch:
	default:
	}
	l.ch <- Result[T]{Items: items, Err: err}
}

func (l *Latest[T]) C() <-chan Result[T] { return l.ch }

// Drain descarta el resultado pendiente, si lo hay.
func (l *Latest[T]) Drain() {
	l.mu.Lock()
	defer l.mu.Unlock()

	select {
	case <-l.ch:
	default:
	}
}
