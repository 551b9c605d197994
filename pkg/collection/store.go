// Package collection keeps the local list of journal memories in step with
// the remote service.
package collection

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/gateway"
)

// ErrSuperseded is returned by a list or search whose result was dropped
// because a newer one started before it completed.
var ErrSuperseded = errors.New("collection: fetch superseded by a newer one")

// Mode is the current view: the filtered list or a search result set.
type Mode int

const (
	ModeList Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "list"
}

// State is a snapshot of the store.
type State struct {
	Entries []entry.Memory
	Filters FilterSpec
	Mode    Mode
	Query   string
	Loading bool
	Err     error
}

// ChangeType names what happened to the entries.
type ChangeType int

const (
	ChangeReplace ChangeType = iota
	ChangeCreate
	ChangeUpdate
	ChangeDelete
	ChangeError
)

// Change is emitted after the store applied (or failed) an operation.
type Change struct {
	Type ChangeType
	ID   entry.ID
	Err  error
}

// Gateway is the subset of the gateway client the store calls.
type Gateway interface {
	ListMemories(ctx context.Context, query url.Values) ([]entry.Memory, error)
	SemanticSearch(ctx context.Context, q string) ([]entry.Memory, error)
	GetMemory(ctx context.Context, id entry.ID) (entry.Memory, error)
	CreateMemory(ctx context.Context, d entry.Draft) (entry.Memory, error)
	UpdateMemory(ctx context.Context, id entry.ID, p entry.Patch) (entry.Memory, error)
	DeleteMemory(ctx context.Context, id entry.ID) error
	AnalyzeEmotion(ctx context.Context, text string) (gateway.Analysis, error)
}

// Store owns the entries and filter state. The mutex is never held across a
// gateway call. Mutations carry no sequence token, so concurrent update and
// delete of the same id are not coordinated.
type Store struct {
	gw  Gateway
	log *zap.Logger

	mu      sync.Mutex
	seq     uint64
	entries entries
	filters FilterSpec
	mode    Mode
	query   string
	loading bool
	err     error

	changes chan Change
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.Named("collection")
		}
	}
}

// WithFilters sets the filters used by the first Refetch.
func WithFilters(f FilterSpec) Option {
	return func(s *Store) {
		s.filters = f.clone()
	}
}

// New returns an empty store in list mode with default filters.
func New(gw Gateway, opts ...Option) *Store {
	s := &Store{
		gw:      gw,
		log:     zap.NewNop(),
		filters: DefaultFilters(),
		changes: make(chan Change, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events delivers changes without ever blocking the store; a full buffer
// drops the change.
func (s *Store) Events() <-chan Change {
	return s.changes
}

func (s *Store) emit(c Change) {
	select {
	case s.changes <- c:
	default:
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Entries: []entry.Memory(s.entries.clone()),
		Filters: s.filters.clone(),
		Mode:    s.mode,
		Query:   s.query,
		Loading: s.loading,
		Err:     s.err,
	}
}

// Entries returns a copy of the current entries.
func (s *Store) Entries() []entry.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []entry.Memory(s.entries.clone())
}

func (s *Store) Filters() FilterSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.clone()
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// begin starts a primary fetch and returns its token.
func (s *Store) begin(mode Mode, query string) (uint64, FilterSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.mode = mode
	s.query = query
	s.loading = true
	return s.seq, s.filters.clone()
}

// complete applies a primary fetch result if token is still current.
func (s *Store) complete(token uint64, list []entry.Memory, err error) error {
	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		s.log.Debug("discarding superseded fetch", zap.Uint64("token", token))
		return ErrSuperseded
	}
	s.loading = false
	if err != nil {
		s.err = err
		s.mu.Unlock()
		s.log.Warn("fetch failed, keeping stale entries", zap.Error(err))
		s.emit(Change{Type: ChangeError, Err: err})
		return err
	}
	s.entries = entries(list).clone()
	s.err = nil
	n := len(s.entries)
	s.mu.Unlock()

	s.log.Debug("entries replaced", zap.Int("count", n))
	s.emit(Change{Type: ChangeReplace})
	return nil
}

// Refetch lists memories with the current filters and replaces the entries.
// On failure the previous entries stay and Err is set.
func (s *Store) Refetch(ctx context.Context) error {
	token, filters := s.begin(ModeList, "")
	list, err := s.gw.ListMemories(ctx, filters.Query())
	return s.complete(token, list, err)
}

// SetFilters stores f and refetches. It also leaves search mode.
func (s *Store) SetFilters(ctx context.Context, f FilterSpec) error {
	s.mu.Lock()
	s.filters = f.clone()
	s.mu.Unlock()
	return s.Refetch(ctx)
}

// Search replaces the entries with the semantic search result for q,
// ignoring the filters. A blank q is a Refetch.
func (s *Store) Search(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.Refetch(ctx)
	}
	token, _ := s.begin(ModeSearch, q)
	list, err := s.gw.SemanticSearch(ctx, q)
	return s.complete(token, list, err)
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.emit(Change{Type: ChangeError, Err: err})
	return err
}

func invalid(err error) error {
	var verr *entry.ValidationError
	if errors.As(err, &verr) {
		return gateway.Invalid(verr.Fields, verr.Error())
	}
	return err
}

// Create submits d and, once the service confirms, puts the stored memory
// first. The position ignores the active ordering.
func (s *Store) Create(ctx context.Context, d entry.Draft) (entry.Memory, error) {
	if err := entry.Validate(d); err != nil {
		return entry.Memory{}, s.fail(invalid(err))
	}
	m, err := s.gw.CreateMemory(ctx, d)
	if err != nil {
		return entry.Memory{}, s.fail(err)
	}

	s.mu.Lock()
	s.entries = s.entries.insertFront(m.Clone())
	s.mu.Unlock()

	s.log.Debug("memory created", zap.String("id", m.ID.String()))
	s.emit(Change{Type: ChangeCreate, ID: m.ID})
	return m, nil
}

// Update applies p to id and replaces the local entry in place.
func (s *Store) Update(ctx context.Context, id entry.ID, p entry.Patch) (entry.Memory, error) {
	if err := entry.Validate(p); err != nil {
		return entry.Memory{}, s.fail(invalid(err))
	}
	m, err := s.gw.UpdateMemory(ctx, id, p)
	if err != nil {
		return entry.Memory{}, s.fail(err)
	}
	if m.ID == "" {
		m.ID = id
	}

	s.mu.Lock()
	s.entries, _ = s.entries.replaceByID(m.Clone())
	s.mu.Unlock()

	s.emit(Change{Type: ChangeUpdate, ID: id})
	return m, nil
}

// Delete removes id remotely and then locally. Deleting an id that is not
// present is left to the service to reject.
func (s *Store) Delete(ctx context.Context, id entry.ID) error {
	if err := s.gw.DeleteMemory(ctx, id); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.entries, _ = s.entries.removeByID(id)
	s.mu.Unlock()

	s.emit(Change{Type: ChangeDelete, ID: id})
	return nil
}

// Get fetches one memory. A local copy, if present, is refreshed in place.
func (s *Store) Get(ctx context.Context, id entry.ID) (entry.Memory, error) {
	m, err := s.gw.GetMemory(ctx, id)
	if err != nil {
		return entry.Memory{}, err
	}
	s.mu.Lock()
	var replaced bool
	s.entries, replaced = s.entries.replaceByID(m.Clone())
	s.mu.Unlock()
	if replaced {
		s.emit(Change{Type: ChangeUpdate, ID: id})
	}
	return m, nil
}

// AnalyzeEmotion asks the remote detector to label text. The store's state
// is not touched.
func (s *Store) AnalyzeEmotion(ctx context.Context, text string) (gateway.Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return gateway.Analysis{}, gateway.Invalid(map[string][]string{"text": {"this field is required"}}, "")
	}
	return s.gw.AnalyzeEmotion(ctx, text)
}
