// Package visitor keeps one client stack (REST client, session, cart, pages)
// per storefront visitor.
package visitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/pages"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

const CookieName = "sid"

type Visitor struct {
	ID      string
	Client  *shopclient.Client
	Session *auth.Session
	Cart    *cart.Store
	Pages   *pages.Pages

	restore  sync.Once
	lastSeen atomic.Int64
}

func (v *Visitor) touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

func (v *Visitor) LastSeen() time.Time {
	return time.Unix(0, v.lastSeen.Load())
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	TTL     time.Duration
}

type Registry struct {
	opts   Options
	tokens tokenstore.Store
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*Visitor
}

func NewRegistry(opts Options, tokens tokenstore.Store) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	return &Registry{
		opts:     opts,
		tokens:   tokens,
		now:      time.Now,
		visitors: map[string]*Visitor{},
	}
}

func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one we handed out.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// New wires a client stack whose token is persisted in tokens under id.
// The session is not restored yet.
func New(id string, opts Options, tokens tokenstore.Store) *Visitor {
	client := shopclient.NewClient(opts.BaseURL, opts.Timeout)
	session := auth.NewSession(client, tokenstore.Scope(tokens, id))
	store := cart.NewStore(client, session)
	return &Visitor{
		ID:      id,
		Client:  client,
		Session: session,
		Cart:    store,
		Pages:   pages.New(client, session, store),
	}
}

// Get returns the visitor for id, creating it on first sight. A new visitor
// restores its session from the token store before Get returns.
func (r *Registry) Get(ctx context.Context, id string) *Visitor {
	r.mu.Lock()
	v, ok := r.visitors[id]
	if !ok {
		v = New(id, r.opts, r.tokens)
		r.visitors[id] = v
	}
	v.touch(r.now())
	r.mu.Unlock()

	v.restore.Do(func() {
		if err := v.Session.Restore(ctx); err != nil {
			logging.FromContext(ctx).Info("session_not_restored", "visitor_id", id, "error", err)
		}
	})
	return v
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep drops visitors idle for longer than the TTL. Their persisted tokens
// stay, so a returning visitor is restored.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.TTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, v := range r.visitors {
		if v.LastSeen().Before(cutoff) {
			delete(r.visitors, id)
			n++
		}
	}
	return n
}

func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				logging.FromContext(ctx).Debug("visitors_swept", "count", n, "remaining", r.Len())
			}
		}
	}
}
