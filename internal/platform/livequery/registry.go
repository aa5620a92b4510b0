// Package livequery implementa lecturas "vivas": una suscripción guarda un
// predicado y un callback; cada mutación publicada reevalúa solo las
// suscripciones cuyo predicado coincide y empuja el resultado nuevo.
package livequery

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Source es la lectura que respalda una suscripción.
// Matches se llama con el lock del registro tomado: debe ser barato y no
// tocar el registro.
type Source[T any] interface {
	Matches(item T) bool
	Load(ctx context.Context) ([]T, error)
}

// Gauge recibe la cantidad de suscripciones activas (prometheus.Gauge sirve).
type Gauge interface {
	Set(float64)
}

type Registry[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription[T]

	logger *zap.Logger
	gauge  Gauge
}

type Option[T any] func(*Registry[T])

func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(r *Registry[T]) { r.logger = l }
}

func WithGauge[T any](g Gauge) Option[T] {
	return func(r *Registry[T]) { r.gauge = g }
}

func New[T any](opts ...Option[T]) *Registry[T] {
	r := &Registry[T]{
		subs:   make(map[uint64]*Subscription[T]),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registra la lectura y devuelve enseguida; la primera evaluación
// y las siguientes corren en una goroutine propia. push recibe cada resultado
// (o el error de Load) en orden, nunca en paralelo.
//
// La suscripción termina cuando ctx se cancela o al llamar Cancel.
func (r *Registry[T]) Subscribe(ctx context.Context, src Source[T], push func([]T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	s := &Subscription[T]{
		reg:    r,
		src:    src,
		push:   push,
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	r.mu.Lock()
	r.nextID++
	s.id = r.nextID
	r.subs[s.id] = s
	n := len(r.subs)
	r.mu.Unlock()

	r.report(n)
	r.logger.Debug("live query subscribed", zap.Uint64("subscription", s.id), zap.Int("active", n))

	go s.run(ctx)
	return s
}

// Publish marca como sucias las suscripciones afectadas por items.
// No bloquea: varias publicaciones seguidas se colapsan en una reevaluación.
func (r *Registry[T]) Publish(items ...T) {
	if len(items) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subs {
		for _, it := range items {
			if s.src.Matches(it) {
				s.markDirty()
				break
			}
		}
	}
}

// Len devuelve la cantidad de suscripciones activas.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	delete(r.subs, id)
	n := len(r.subs)
	r.mu.Unlock()

	r.report(n)
	r.logger.Debug("live query released", zap.Uint64("subscription", id), zap.Int("active", n))
}

func (r *Registry[T]) report(n int) {
	if r.gauge != nil {
		r.gauge.Set(float64(n))
	}
}

type Subscription[T any] struct {
	id     uint64
	reg    *Registry[T]
	src    Source[T]
	push   func([]T, error)
	dirty  chan struct{}
	done   chan struct{}
	cancel context.CancelFunc
}

func (s *Subscription[T]) ID() uint64 { return s.id }

// Done se cierra cuando la goroutine de la suscripción terminó.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Cancel da de baja la lectura y espera a que termine su goroutine.
// No llamar desde dentro de push (se bloquearía esperándose a sí misma).
func (s *Subscription[T]) Cancel() {
	s.cancel()
	<-s.done
}

func (s *Subscription[T]) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
		// ya hay una reevaluación pendiente
	}
}

func (s *Subscription[T]) run(ctx context.Context) {
	defer close(s.done)
	defer s.reg.remove(s.id)

	for {
		items, err := s.src.Load(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.reg.logger.Warn("live query load failed", zap.Uint64("subscription", s.id), zap.Error(err))
		}
		s.push(items, err)

		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
		}
	}
}
