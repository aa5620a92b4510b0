package browse

import (
	"context"
	"errors"
	"sync"
	"time"

	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/domain/search"
	"cat-shelter/internal/platform/livequery"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("browse session not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	cats   *cats.Service
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(catsSvc *cats.Service, opts ...Option) *Service {
	s := &Service{
		cats:     catsSvc,
		logger:   zap.NewNop(),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open crea una sesión con el filtro por defecto (todo en Any) y arranca su
// lectura viva de todos los gatos.
func (s *Service) Open(ctx context.Context) View {
	now := s.now()
	sess := &session{
		id:        uuid.NewString(),
		createdAt: now,
		lastSeen:  now,
		criteria:  search.Default(),
		query:     search.Describe(search.Default()),
		out:       livequery.NewLatest[cats.Cat](),
		done:      make(chan struct{}),
	}
	// la lectura vive lo que la sesión, no lo que el request que la abrió
	sess.sub = s.cats.Watch(context.WithoutCancel(ctx), sess.query, sess.push)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.logger.Info("browse session opened", zap.String("session_id", sess.id), zap.Int("active", n))
	return sess.view()
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Service) Get(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = s.now()
	return sess.view(), nil
}

// Update aplica un filtro nuevo. changed=false si es igual al actual: la
// lectura en curso sigue y no se emite consulta. Si cambió, la lectura vieja
// se cancela antes de registrar la nueva.
func (s *Service) Update(ctx context.Context, id string, proposed search.Criteria) (View, bool, error) {
	proposed = proposed.Normalize()
	if err := proposed.Validate(); err != nil {
		return View{}, false, errors.Join(ErrInvalidInput, err)
	}

	sess, err := s.lookup(id)
	if err != nil {
		return View{}, false, err
	}

	// opMu serializa los cambios de lectura; mu solo protege el estado que
	// también toca push
	sess.opMu.Lock()
	defer sess.opMu.Unlock()
	if sess.closed {
		return View{}, false, ErrNotFound
	}

	sess.mu.Lock()
	sess.lastSeen = s.now()
	d, changed := search.Select(sess.criteria, proposed)
	if !changed {
		v := sess.view()
		sess.mu.Unlock()
		return v, false, nil
	}
	old := sess.sub
	sess.mu.Unlock()

	old.Cancel()
	// lo pendiente es del filtro anterior
	sess.mu.Lock()
	sess.last, sess.lastErr, sess.hasLast = nil, nil, false
	sess.out.Drain()
	sess.mu.Unlock()

	sub := s.cats.Watch(context.WithoutCancel(ctx), d, sess.push)

	sess.mu.Lock()
	sess.criteria = proposed
	sess.query = d
	sess.sub = sub
	v := sess.view()
	sess.mu.Unlock()

	s.logger.Debug("browse query changed",
		zap.String("session_id", id),
		zap.String("kind", string(d.Kind)),
	)
	return v, true, nil
}

// Feed es lo que consume un stream de la sesión.
type Feed struct {
	Latest *livequery.Latest[cats.Cat]
	// Done se cierra cuando la sesión se da de baja (Close, Sweep o CloseAll).
	Done <-chan struct{}

	detach sync.Once
	sess   *session
	now    func() time.Time
}

// Detach avisa que el consumidor se fue. Desde ahí la sesión vuelve a contar
// como inactiva para Sweep. Llamarlo más de una vez no hace nada.
func (f *Feed) Detach() {
	f.detach.Do(func() {
		f.sess.mu.Lock()
		defer f.sess.mu.Unlock()
		f.sess.streams--
		f.sess.lastSeen = f.now()
	})
}

// Results engancha un consumidor al buzón de resultados de la sesión. Si ya
// hubo un resultado se vuelve a dejar en el buzón, así un stream nuevo
// arranca con la lista actual. Mientras el Feed no se suelte, Sweep no cierra
// la sesión.
func (s *Service) Results(id string) (*Feed, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastSeen = s.now()
	sess.streams++
	if sess.hasLast {
		sess.out.Push(sess.last, sess.lastErr)
	}
	return &Feed{Latest: sess.out, Done: sess.done, sess: sess, now: s.now}, nil
}

// Close da de baja la sesión y su lectura viva.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.release(sess)
	return nil
}

// CloseAll cierra todas las sesiones (shutdown).
func (s *Service) CloseAll() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.release(sess)
	}
}

// Sweep cierra las sesiones sin uso desde hace más de idle. Una sesión con un
// stream conectado no se cierra.
func (s *Service) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var stale []*session
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := sess.streams == 0 && sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if expired {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.release(sess)
	}
	return len(stale)
}

// RunSweeper llama a Sweep cada every hasta que ctx se cancela.
func (s *Service) RunSweeper(ctx context.Context, every, idle time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.Sweep(idle); n > 0 {
				s.logger.Info("idle browse sessions closed", zap.Int("closed", n))
			}
		}
	}
}

func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) release(sess *session) {
	sess.opMu.Lock()
	defer sess.opMu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	close(sess.done)

	sess.mu.Lock()
	sub := sess.sub
	sess.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
	s.logger.Info("browse session closed", zap.String("session_id", sess.id))
}
