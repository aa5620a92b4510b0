// Package browse mantiene las sesiones de navegación: cada una tiene su filtro
// actual y una lectura viva de los gatos que lo cumplen. Cambiar el filtro
// pasa por search.Select; si hay consulta nueva se reemplaza la lectura.
package browse

import (
	"sync"
	"time"

	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/domain/search"
	"cat-shelter/internal/platform/livequery"
)

// View es lo que la API muestra de una sesión.
type View struct {
	ID        string            `json:"id"`
	Criteria  search.Criteria   `json:"criteria"`
	Query     search.Descriptor `json:"query"`
	CreatedAt time.Time         `json:"created_at"`
}

type session struct {
	id        string
	createdAt time.Time

	opMu   sync.Mutex
	closed bool
	done   chan struct{} // se cierra en release


	mu       sync.Mutex
	criteria search.Criteria
	query    search.Descriptor
	sub      *livequery.Subscription[cats.Cat]
	lastSeen time.Time
	streams  int // consumidores conectados; la sesión no está inactiva

	// último resultado, para reenviarlo a un stream que se conecta tarde
	last    []cats.Cat
	lastErr error
	hasLast bool
	out     *livequery.Latest[cats.Cat]
}

func (s *session) view() View {
	return View{
		ID:        s.id,
		Criteria:  s.criteria,
		Query:     s.query,
		CreatedAt: s.createdAt,
	}
}

// push guarda el resultado y lo deja en el buzón bajo el mismo lock, así un
// reenvío de Results nunca pisa uno más nuevo.
func (s *session) push(items []cats.Cat, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last, s.lastErr, s.hasLast = items, err, true
	s.out.Push(items, err)
}
