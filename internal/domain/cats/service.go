package cats

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"cat-shelter/internal/platform/livequery"

	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownQuery = errors.New("unknown query kind")
)

const (
	// RecentDays: ventana del feed de ingresos recientes.
	RecentDays = 30

	// El extremo "hacia adelante" de la ventana deja que un gato ingresado
	// después de emitida la consulta siga entrando en ella.
	forwardToleranceDays = 365
)

const day = 24 * time.Hour

// QuerySource produce la consulta concreta para un instante dado.
// Las ventanas de fecha se resuelven al emitir la consulta, no antes.
type QuerySource interface {
	Resolve(now time.Time) Query
}

// RecentAdmissions es la fuente del feed de ingresos recientes.
type RecentAdmissions struct{}

func (RecentAdmissions) Resolve(now time.Time) Query {
	return Query{
		Kind: QueryAdmittedBetween,
		Admitted: Window{
			From: now.Add(-RecentDays * day),
			To:   now.Add(forwardToleranceDays * day),
		},
	}
}

// Recorder registra duración y resultado de cada operación del store.
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, d time.Duration)
}

type Service struct {
	repo     Repository
	live     *livequery.Registry[Cat]
	logger   *zap.Logger
	recorder Recorder
	gauge    livequery.Gauge
	now      func() time.Time
	rand     func(n int) int
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLiveGauge publica la cantidad de lecturas vivas activas.
func WithLiveGauge(g livequery.Gauge) Option {
	return func(s *Service) { s.gauge = g }
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
		rand:   rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	liveOpts := []livequery.Option[Cat]{livequery.WithLogger[Cat](s.logger)}
	if s.gauge != nil {
		liveOpts = append(liveOpts, livequery.WithGauge[Cat](s.gauge))
	}
	s.live = livequery.New(liveOpts...)
	return s
}

// Run ejecuta una consulta ya resuelta contra la lectura que le corresponde.
func (s *Service) Run(ctx context.Context, q Query) (out []Cat, err error) {
	defer s.observe(ctx, "run_"+strings.ToLower(string(q.Kind)), time.Now(), &err)

	switch q.Kind {
	case QueryAll:
		return s.repo.ListAll(ctx)
	case QueryByBreed:
		return s.repo.ListByBreed(ctx, q.Breed)
	case QueryByGender:
		return s.repo.ListByGender(ctx, q.Gender)
	case QueryByAgeRange:
		return s.repo.ListBornBetween(ctx, q.Born.From, q.Born.To)
	case QueryByBreedAndGender:
		return s.repo.ListByBreedAndGender(ctx, q.Breed, q.Gender)
	case QueryByBreedAndAgeRange:
		return s.repo.ListByBreedBornBetween(ctx, q.Breed, q.Born.From, q.Born.To)
	case QueryByGenderAndAgeRange:
		return s.repo.ListByGenderBornBetween(ctx, q.Gender, q.Born.From, q.Born.To)
	case QueryByBreedGenderAgeRange:
		return s.repo.ListByBreedGenderBornBetween(ctx, q.Breed, q.Gender, q.Born.From, q.Born.To)
	case QueryAdmittedBetween:
		return s.repo.ListAdmittedBetween(ctx, q.Admitted.From, q.Admitted.To)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, q.Kind)
	}
}

// Find resuelve src con el reloj actual y la ejecuta una vez.
func (s *Service) Find(ctx context.Context, src QuerySource) ([]Cat, error) {
	return s.Run(ctx, src.Resolve(s.now()))
}

// Watch registra una lectura viva. push recibe el resultado inicial y uno
// nuevo cada vez que una mutación afecta al predicado.
func (s *Service) Watch(ctx context.Context, src QuerySource, push func([]Cat, error)) *livequery.Subscription[Cat] {
	lr := &liveRead{svc: s, src: src}
	lr.resolve()
	return s.live.Subscribe(ctx, lr, push)
}

// Recent es la lectura viva del feed de ingresos recientes.
func (s *Service) Recent(ctx context.Context, push func([]Cat, error)) *livequery.Subscription[Cat] {
	return s.Watch(ctx, RecentAdmissions{}, push)
}

// RecentSnapshot es la variante sincrónica: una foto en el momento.
func (s *Service) RecentSnapshot(ctx context.Context) ([]Cat, error) {
	return s.Find(ctx, RecentAdmissions{})
}

// Featured elige al azar uno de los ingresos recientes.
func (s *Service) Featured(ctx context.Context) (Cat, bool, error) {
	recent, err := s.RecentSnapshot(ctx)
	if err != nil {
		return Cat{}, false, err
	}
	if len(recent) == 0 {
		return Cat{}, false, nil
	}
	return recent[s.rand(len(recent))], true, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Cat, error) {
	if id <= 0 {
		return Cat{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

type AdmitInput struct {
	Name        string
	Gender      Gender
	Breed       string
	Description string
	DOB         time.Time
	ImagePath   string
}

// Admit es el alta desde el formulario. Sin nombre o sin foto no se crea
// nada y tampoco es un error: created=false.
func (s *Service) Admit(ctx context.Context, in AdmitInput) (c Cat, created bool, err error) {
	name := strings.TrimSpace(in.Name)
	image := strings.TrimSpace(in.ImagePath)
	if name == "" || image == "" {
		s.logger.Debug("admit dropped: name and image are required")
		return Cat{}, false, nil
	}
	if in.Gender != GenderMale && in.Gender != GenderFemale {
		return Cat{}, false, ErrInvalidInput
	}

	dob := in.DOB
	if dob.IsZero() {
		dob = s.now()
	}
	// la hora de nacimiento no importa
	dob = time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, dob.Location())

	c, err = s.Insert(ctx, Cat{
		Name:        name,
		Gender:      in.Gender,
		Breed:       strings.TrimSpace(in.Breed),
		Description: strings.TrimSpace(in.Description),
		DOB:         dob,
		AdmittedAt:  s.now(),
		ImagePath:   image,
	})
	if err != nil {
		return Cat{}, false, err
	}
	return c, true, nil
}

// Insert persiste un gato sin ID; el store asigna uno nuevo.
// Las lecturas vivas cuyo predicado coincide se reevalúan.
func (s *Service) Insert(ctx context.Context, c Cat) (out Cat, err error) {
	defer s.observe(ctx, "insert", time.Now(), &err)

	if c.ID != 0 {
		return Cat{}, ErrInvalidInput
	}
	out, err = s.repo.Insert(ctx, c)
	if err != nil {
		return Cat{}, fmt.Errorf("insert cat: %w", err)
	}

	s.logger.Info("cat admitted", zap.Int64("cat_id", out.ID), zap.String("breed", out.Breed))
	s.live.Publish(out)
	return out, nil
}

// Update y Delete existen a nivel store; ningún flujo del refugio los usa hoy.
func (s *Service) Update(ctx context.Context, c Cat) (err error) {
	defer s.observe(ctx, "update", time.Now(), &err)

	prev, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("update cat %d: %w", c.ID, err)
	}
	s.live.Publish(prev, c)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) (err error) {
	defer s.observe(ctx, "delete", time.Now(), &err)

	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete cat %d: %w", id, err)
	}
	s.live.Publish(prev)
	return nil
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err *error) {
	if s.recorder == nil {
		return
	}
	s.recorder.Observe(ctx, op, *err == nil, time.Since(start))
}

// liveRead adapta un QuerySource a livequery.Source. La consulta se vuelve a
// resolver en cada evaluación, así las ventanas relativas a "ahora" no se
// quedan viejas mientras la lectura sigue viva.
type liveRead struct {
	svc *Service
	src QuerySource

	mu sync.Mutex
	q  Query
}

func (lr *liveRead) resolve() Query {
	q := lr.src.Resolve(lr.svc.now())
	lr.mu.Lock()
	lr.q = q
	lr.mu.Unlock()
	return q
}

func (lr *liveRead) Matches(c Cat) bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.q.Matches(c)
}

func (lr *liveRead) Load(ctx context.Context) ([]Cat, error) {
	return lr.svc.Run(ctx, lr.resolve())
}
