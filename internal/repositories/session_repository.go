package repositories

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"invoice-backend/internal/cache"
	"invoice-backend/internal/metrics"
	"invoice-backend/internal/models"
	"invoice-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// SessionRepository holds per-session invoice state in memory. Each session
// has exactly one writer (the browser that owns the cookie); the mutex only
// guards the map against concurrent sessions. Snapshots are mirrored to Redis
// when available so an in-progress form survives a restart.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.InvoiceSession
	ttl      time.Duration
	stop     chan struct{}
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	r := &SessionRepository{
		sessions: make(map[string]*models.InvoiceSession),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go r.sweep()
	return r
}

// Close stops the background sweep.
func (r *SessionRepository) Close() {
	close(r.stop)
}

// Get returns the session for id, restoring it from the Redis snapshot or
// seeding a fresh one when absent. The returned value is a copy.
func (r *SessionRepository) Get(ctx context.Context, id string) *models.InvoiceSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copySession(r.locked(ctx, id))
}

// Update applies fn to a clone of the session under the lock and commits the
// clone only when fn succeeds, so a rejected edit cannot leave a half-applied
// session behind. The returned value is a copy of the committed session.
func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*models.InvoiceSession) error) (*models.InvoiceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := copySession(r.locked(ctx, id))
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now()
	r.sessions[id] = next

	if data, err := json.Marshal(next); err == nil {
		cache.SaveSessionSnapshot(ctx, id, data, r.ttl)
	}
	return copySession(next), nil
}

// locked returns the live session for id, creating it if needed.
// Caller must hold r.mu.
func (r *SessionRepository) locked(ctx context.Context, id string) *models.InvoiceSession {
	if sess, ok := r.sessions[id]; ok {
		return sess
	}

	sess := r.restore(ctx, id)
	if sess == nil {
		sess = newSession(id)
	}
	r.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return sess
}

// restore loads a session snapshot from Redis, if one exists.
func (r *SessionRepository) restore(ctx context.Context, id string) *models.InvoiceSession {
	data, ok := cache.GetSessionSnapshot(ctx, id)
	if !ok {
		return nil
	}
	var sess models.InvoiceSession
	if err := json.Unmarshal(data, &sess); err != nil {
		log.Printf("[Session] Discarding unreadable snapshot for %s: %v", id, err)
		return nil
	}
	sess.UpdatedAt = time.Now()
	return &sess
}

// sweep drops sessions idle longer than the TTL, until Close.
func (r *SessionRepository) sweep() {
	interval := r.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-r.ttl)
		r.mu.Lock()
		for id, sess := range r.sessions {
			if sess.UpdatedAt.Before(cutoff) {
				delete(r.sessions, id)
			}
		}
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
		r.mu.Unlock()
	}
}

// newSession seeds a session with the default invoice the form opens with.
func newSession(id string) *models.InvoiceSession {
	today := timeutil.Today()
	return &models.InvoiceSession{
		ID: id,
		Items: []models.LineItem{
			{Description: "Service 1", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
			{Description: "Service 2", Quantity: 2, UnitPrice: decimal.NewFromInt(2000)},
		},
		Details: models.PartyInfo{
			CompanyName:    "Your Company",
			CompanyAddress: "123 Business St\nCity, State 12345",
			InvoiceNumber:  "INV-001",
			InvoiceDate:    today,
			DueDate:        today,
			BillToName:     "Client Company",
			BillToAddress:  "456 Client Ave\nCity, State 67890",
		},
		UpdatedAt: time.Now(),
	}
}

func copySession(sess *models.InvoiceSession) *models.InvoiceSession {
	out := *sess
	out.Items = make([]models.LineItem, len(sess.Items))
	copy(out.Items, sess.Items)
	return &out
}
