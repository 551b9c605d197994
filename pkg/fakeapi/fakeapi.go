// Package fakeapi is an in-process stand-in for the remote journal service,
// for tests. It speaks the same routes and payloads under /api.
package fakeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
)

// Interceptor runs before routing. Returning true means it wrote the
// response and the request goes no further.
type Interceptor func(w http.ResponseWriter, r *http.Request) bool

// Recorded is what the server saw of one request.
type Recorded struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestedWith string
	RequestID     string
}

type user struct {
	email    string
	password string
}

type record struct {
	owner  string
	memory entry.Memory
}

// Server is a running fake. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	// Paginate wraps list responses in {"count", "results"}.
	Paginate bool
	// Now stamps created memories.
	Now func() time.Time

	mu           sync.Mutex
	users        map[string]user
	access       map[string]string
	refresh      map[string]string
	issued       int
	nextID       int
	records      []record
	interceptors []Interceptor
	requests     []Recorded
}

// New starts a fake with no users.
func New() *Server {
	s := &Server{
		Now:     time.Now,
		users:   map[string]user{},
		access:  map[string]string{},
		refresh: map[string]string{},
		nextID:  1,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// APIURL is the base URL a gateway client should be pointed at.
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = user{password: password, email: username + "@example.com"}
}

// Grant issues a valid access token for username without a login round trip.
func (s *Server) Grant(username, access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		s.users[username] = user{}
	}
	s.access[access] = username
}

// Revoke invalidates an access token so the next call using it gets 401.
func (s *Server) Revoke(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.access, access)
}

// Seed stores memories for owner, newest first in the given order.
func (s *Server) Seed(owner string, ms ...entry.Memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range ms {
		if m.ID == "" {
			m.ID = entry.ID(strconv.Itoa(s.nextID))
			s.nextID++
		}
		s.records = append(s.records, record{owner: owner, memory: m.Clone()})
	}
}

// SetNextID sets the identifier assigned to the next created memory.
func (s *Server) SetNextID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = id
}

// Intercept adds fn ahead of the routes. Interceptors run in the order added.
func (s *Server) Intercept(fn Interceptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interceptors = append(s.interceptors, fn)
}

// FailNext answers the next request matching method and path (relative to
// /api) with status and body, once.
func (s *Server) FailNext(method, path string, status int, body string) {
	var once sync.Once
	s.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		if r.Method != method || strings.TrimPrefix(r.URL.Path, "/api") != path {
			return false
		}
		hit := false
		once.Do(func() {
			hit = true
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		})
		return hit
	})
}

// Requests returns everything received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request, or false if there is none.
func (s *Server) LastRequest() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Memories returns owner's stored memories, newest first.
func (s *Server) Memories(owner string) []entry.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entry.Memory
	for _, rec := range s.records {
		if rec.owner == owner {
			out = append(out, rec.memory.Clone())
		}
	}
	return out
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.intercept)

	r.Route("/api", func(api chi.Router) {
		api.Post("/token/", s.obtainToken)
		api.Post("/token/refresh/", s.refreshToken)
		api.Post("/register/", s.register)

		api.Group(func(authed chi.Router) {
			authed.Use(s.authenticate)
			authed.Get("/memories/", s.listMemories)
			authed.Post("/memories/", s.createMemory)
			authed.Get("/memories/semantic_search/", s.semanticSearch)
			authed.Get("/memories/emotion_stats/", s.emotionStats)
			authed.Get("/memories/{id}/", s.getMemory)
			authed.Patch("/memories/{id}/", s.updateMemory)
			authed.Delete("/memories/{id}/", s.deleteMemory)
			authed.Post("/ai/analyze-emotion/", s.analyzeEmotion)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, "/api"),
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestedWith: r.Header.Get("X-Requested-With"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fns := make([]Interceptor, len(s.interceptors))
		copy(fns, s.interceptors)
		s.mu.Unlock()
		for _, fn := range fns {
			if fn(w, r) {
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func withOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ctxKey{}, owner)
}

func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ctxKey{}).(string)
	return owner
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		owner, ok := s.access[token]
		s.mu.Unlock()
		if token == "" || !ok {
			respond(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(withOwner(r.Context(), owner)))
	})
}

func (s *Server) issue(username string) map[string]string {
	s.issued++
	access := fmt.Sprintf("A%d", s.issued)
	refresh := fmt.Sprintf("R%d", s.issued)
	s.access[access] = username
	s.refresh[refresh] = username
	return map[string]string{"access": access, "refresh": refresh}
}

func (s *Server) obtainToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[body.Username]
	if !ok || u.password != body.Password {
		respond(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
		return
	}
	respond(w, http.StatusOK, s.issue(body.Username))
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.refresh[body.Refresh]
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}
	s.issued++
	access := fmt.Sprintf("A%d", s.issued)
	s.access[access] = username
	respond(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	fields := map[string][]string{}
	if body.Username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if body.Email == "" {
		fields["email"] = []string{"This field is required."}
	}
	if body.Password == "" {
		fields["password"] = []string{"This field is required."}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[body.Username]; taken && body.Username != "" {
		fields["username"] = []string{"A user with that username already exists."}
	}
	if len(fields) > 0 {
		respond(w, http.StatusBadRequest, fields)
		return
	}
	s.users[body.Username] = user{email: body.Email, password: body.Password}
	respond(w, http.StatusCreated, s.issue(body.Username))
}

func (s *Server) listMemories(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	q := r.URL.Query()

	s.mu.Lock()
	var out []entry.Memory
	for _, rec := range s.records {
		if rec.owner != owner {
			continue
		}
		if !matches(rec.memory, q) {
			continue
		}
		out = append(out, rec.memory.Clone())
	}
	s.mu.Unlock()

	if ordering := q.Get("ordering"); ordering != "" {
		order(out, ordering)
	}
	s.respondList(w, out)
}

func matches(m entry.Memory, q url.Values) bool {
	if e := q.Get("emotion"); e != "" && string(m.Emotion) != e {
		return false
	}
	day := entry.FormatDate(m.CreatedAt.Time)
	if after := q.Get("created_after"); after != "" && day < after {
		return false
	}
	if before := q.Get("created_before"); before != "" && day > before {
		return false
	}
	return true
}

func order(ms []entry.Memory, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	less := func(a, b entry.Memory) bool {
		switch field {
		case "title":
			return a.Title < b.Title
		case "emotion_intensity":
			return a.EmotionIntensity < b.EmotionIntensity
		default:
			return a.CreatedAt.Before(b.CreatedAt.Time)
		}
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if desc {
			return less(ms[j], ms[i])
		}
		return less(ms[i], ms[j])
	})
}

func (s *Server) respondList(w http.ResponseWriter, ms []entry.Memory) {
	if ms == nil {
		ms = []entry.Memory{}
	}
	if s.Paginate {
		respond(w, http.StatusOK, map[string]interface{}{
			"count":    len(ms),
			"next":     nil,
			"previous": nil,
			"results":  ms,
		})
		return
	}
	respond(w, http.StatusOK, ms)
}

func (s *Server) createMemory(w http.ResponseWriter, r *http.Request) {
	var d entry.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	fields := map[string][]string{}
	if strings.TrimSpace(d.Title) == "" {
		fields["title"] = []string{"This field may not be blank."}
	}
	if strings.TrimSpace(d.Content) == "" {
		fields["content"] = []string{"This field may not be blank."}
	}
	if len(fields) > 0 {
		respond(w, http.StatusBadRequest, fields)
		return
	}
	if d.Emotion == "" {
		a := detect(d.Content)
		d.Emotion, d.EmotionIntensity = a.Emotion, a.Intensity
	}

	s.mu.Lock()
	m := entry.Memory{
		ID:               entry.ID(strconv.Itoa(s.nextID)),
		Title:            d.Title,
		Content:          d.Content,
		Emotion:          d.Emotion,
		EmotionIntensity: d.EmotionIntensity,
		Location:         d.Location,
		Tags:             d.Tags,
		CreatedAt:        entry.Timestamp{Time: s.Now().UTC()},
		Image:            d.Image,
	}
	if m.Tags == nil {
		m.Tags = []entry.Tag{}
	}
	s.nextID++
	s.records = append([]record{{owner: ownerFrom(r.Context()), memory: m}}, s.records...)
	s.mu.Unlock()

	respond(w, http.StatusCreated, m)
}

func (s *Server) find(r *http.Request) (int, bool) {
	owner := ownerFrom(r.Context())
	id := chi.URLParam(r, "id")
	for i, rec := range s.records {
		if rec.owner == owner && rec.memory.ID.String() == id {
			return i, true
		}
	}
	return -1, false
}

func notFound(w http.ResponseWriter) {
	respond(w, http.StatusNotFound, map[string]string{"detail": "No Memory matches the given query."})
}

func (s *Server) getMemory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(r)
	if !ok {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, s.records[i].memory)
}

func (s *Server) updateMemory(w http.ResponseWriter, r *http.Request) {
	var p entry.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"detail": "malformed body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(r)
	if !ok {
		notFound(w)
		return
	}
	m := &s.records[i].memory
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Emotion != nil {
		m.Emotion = *p.Emotion
	}
	if p.EmotionIntensity != nil {
		m.EmotionIntensity = *p.EmotionIntensity
	}
	if p.Location != nil {
		m.Location = *p.Location
	}
	if p.Tags != nil {
		m.Tags = append([]entry.Tag{}, *p.Tags...)
	}
	if p.Image != nil {
		m.Image = *p.Image
	}
	respond(w, http.StatusOK, m)
}

func (s *Server) deleteMemory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(r)
	if !ok {
		notFound(w)
		return
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) semanticSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "The 'q' parameter is required."})
		return
	}
	owner := ownerFrom(r.Context())
	s.mu.Lock()
	var out []entry.Memory
	for _, rec := range s.records {
		if rec.owner != owner {
			continue
		}
		text := strings.ToLower(rec.memory.Title + " " + rec.memory.Content)
		if strings.Contains(text, q) {
			out = append(out, rec.memory.Clone())
		}
	}
	s.mu.Unlock()
	if out == nil {
		out = []entry.Memory{}
	}
	respond(w, http.StatusOK, map[string]interface{}{"results": out})
}

func (s *Server) emotionStats(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	counts := map[string]int{}
	s.mu.Lock()
	for _, rec := range s.records {
		if rec.owner == owner {
			counts[string(rec.memory.Emotion)]++
		}
	}
	s.mu.Unlock()
	respond(w, http.StatusOK, counts)
}

func (s *Server) analyzeEmotion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	respond(w, http.StatusOK, detect(body.Text))
}

type analysis struct {
	Emotion   emotion.Emotion `json:"emotion"`
	Intensity float64         `json:"intensity"`
}

var keywords = map[emotion.Emotion][]string{
	emotion.Joy:      {"happy", "joy", "great", "nice", "love", "wonderful"},
	emotion.Sadness:  {"sad", "cry", "miss", "lonely"},
	emotion.Anger:    {"angry", "furious", "hate", "annoyed"},
	emotion.Fear:     {"afraid", "scared", "worried", "anxious"},
	emotion.Surprise: {"surprise", "unexpected", "wow", "suddenly"},
	emotion.Disgust:  {"gross", "disgust", "awful"},
}

// detect is a keyword stand-in for the remote classifier.
func detect(text string) analysis {
	lower := strings.ToLower(text)
	for _, e := range emotion.All() {
		for _, kw := range keywords[e] {
			if strings.Contains(lower, kw) {
				return analysis{Emotion: e, Intensity: 0.8}
			}
		}
	}
	return analysis{Emotion: emotion.Neutral, Intensity: 0.5}
}

func respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
