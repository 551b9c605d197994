package collection_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/memoir/pkg/collection"
	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/fakeapi"
	"tableflip.dev/memoir/pkg/gateway"
	"tableflip.dev/memoir/pkg/store"
)

type fixture struct {
	srv   *fakeapi.Server
	creds *store.Memory
	gw    *gateway.Client
	store *collection.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.Grant("alice", "A1")
	creds := store.NewMemory()
	require.NoError(t, creds.Set(store.Credential{Username: "alice", AccessToken: "A1", RefreshToken: "R1"}))
	gw := gateway.New(srv.APIURL(), creds)
	return &fixture{srv: srv, creds: creds, gw: gw, store: collection.New(gw)}
}

func ids(ms []entry.Memory) []entry.ID {
	out := make([]entry.ID, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func memory(id, title string, e emotion.Emotion, day string) entry.Memory {
	t, _ := time.Parse("2006-01-02", day)
	return entry.Memory{
		ID:        entry.ID(id),
		Title:     title,
		Content:   title,
		Emotion:   e,
		CreatedAt: entry.Timestamp{Time: t.Add(12 * time.Hour)},
	}
}

func seed(f *fixture) {
	f.srv.Seed("alice",
		memory("3", "Beach", emotion.Joy, "2024-05-03"),
		memory("2", "Rain", emotion.Sadness, "2024-05-02"),
		memory("1", "Exam", emotion.Fear, "2024-05-01"),
	)
}

func TestRefetchReplacesEntries(t *testing.T) {
	f := newFixture(t)
	seed(f)

	require.NoError(t, f.store.Refetch(context.Background()))
	st := f.store.State()
	assert.Equal(t, []entry.ID{"3", "2", "1"}, ids(st.Entries))
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)

	req, _ := f.srv.LastRequest()
	assert.Equal(t, "-created_at", req.Query.Get("ordering"))
}

func TestFilterChangeRefetchesAndReplaces(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()
	require.NoError(t, f.store.Refetch(ctx))

	after := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	before := len(f.srv.Requests())
	require.NoError(t, f.store.SetFilters(ctx, collection.FilterSpec{
		Ordering:     collection.OrderOldest,
		CreatedAfter: &after,
	}))
	assert.Equal(t, before+1, len(f.srv.Requests()), "a filter change always hits the service")
	assert.Equal(t, []entry.ID{"2", "3"}, ids(f.store.Entries()))

	req, _ := f.srv.LastRequest()
	assert.Equal(t, "2024-05-02", req.Query.Get("created_after"))
	assert.Equal(t, "created_at", req.Query.Get("ordering"))

	require.NoError(t, f.store.SetFilters(ctx, collection.FilterSpec{Emotion: emotion.Fear}))
	assert.Equal(t, []entry.ID{"1"}, ids(f.store.Entries()), "entries are replaced, never merged")
}

func TestFailedRefetchKeepsEntries(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()
	require.NoError(t, f.store.Refetch(ctx))
	prior := f.store.Entries()

	f.srv.FailNext(http.MethodGet, "/memories/", http.StatusInternalServerError, `{"detail":"boom"}`)
	err := f.store.Refetch(ctx)
	assert.ErrorIs(t, err, gateway.ErrServer)

	st := f.store.State()
	assert.Equal(t, prior, st.Entries)
	assert.ErrorIs(t, st.Err, gateway.ErrServer)
	assert.False(t, st.Loading)

	require.NoError(t, f.store.Refetch(ctx))
	assert.NoError(t, f.store.Err(), "a successful fetch clears the error")
}

func TestSupersededFetchIsDiscarded(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	f.srv.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Query().Get("emotion") == string(emotion.Joy) {
			close(started)
			<-release
		}
		return false
	})

	errA := make(chan error, 1)
	go func() {
		errA <- f.store.SetFilters(ctx, collection.FilterSpec{Emotion: emotion.Joy})
	}()
	<-started
	assert.True(t, f.store.Loading())

	require.NoError(t, f.store.SetFilters(ctx, collection.FilterSpec{Emotion: emotion.Sadness}))
	close(release)
	assert.ErrorIs(t, <-errA, collection.ErrSuperseded)

	st := f.store.State()
	assert.Equal(t, []entry.ID{"2"}, ids(st.Entries), "the later fetch wins")
	assert.Equal(t, emotion.Sadness, st.Filters.Emotion)
	assert.False(t, st.Loading)
}

func TestSupersededFailureLeavesErrUntouched(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{})
	f.srv.Intercept(func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Query().Get("emotion") != string(emotion.Anger) {
			return false
		}
		close(started)
		<-release
		w.WriteHeader(http.StatusBadGateway)
		return true
	})

	errA := make(chan error, 1)
	go func() {
		errA <- f.store.SetFilters(ctx, collection.FilterSpec{Emotion: emotion.Anger})
	}()
	<-started
	require.NoError(t, f.store.Search(ctx, "beach"))
	close(release)
	assert.ErrorIs(t, <-errA, collection.ErrSuperseded)

	st := f.store.State()
	assert.NoError(t, st.Err)
	assert.Equal(t, collection.ModeSearch, st.Mode)
	assert.Equal(t, []entry.ID{"3"}, ids(st.Entries))
}

func TestSearchModes(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()
	require.NoError(t, f.store.SetFilters(ctx, collection.FilterSpec{Emotion: emotion.Fear}))

	require.NoError(t, f.store.Search(ctx, "rain"))
	st := f.store.State()
	assert.Equal(t, collection.ModeSearch, st.Mode)
	assert.Equal(t, "rain", st.Query)
	assert.Equal(t, []entry.ID{"2"}, ids(st.Entries), "search ignores the filters")

	require.NoError(t, f.store.Search(ctx, "   "))
	st = f.store.State()
	assert.Equal(t, collection.ModeList, st.Mode)
	assert.Equal(t, []entry.ID{"1"}, ids(st.Entries), "a blank search is a refetch")
}

func TestCreatePrepends(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()
	require.NoError(t, f.store.SetFilters(ctx, collection.FilterSpec{Ordering: collection.OrderTitle}))
	prior := ids(f.store.Entries())
	f.srv.SetNextID(42)

	d := entry.NewDraft("Walk", "Nice walk")
	d.Emotion = emotion.Joy
	d.EmotionIntensity = 0.8
	m, err := f.store.Create(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, entry.ID("42"), m.ID)

	got := ids(f.store.Entries())
	require.Len(t, got, len(prior)+1)
	assert.Equal(t, entry.ID("42"), got[0])
	assert.Equal(t, prior, got[1:], "prior entries shift down by one")

	ev := lastChange(f.store)
	assert.Equal(t, collection.ChangeCreate, ev.Type)
	assert.Equal(t, entry.ID("42"), ev.ID)
}

func lastChange(s *collection.Store) collection.Change {
	var last collection.Change
	for {
		select {
		case c := <-s.Events():
			last = c
		default:
			return last
		}
	}
}

func TestCreateInvalidSendsNothing(t *testing.T) {
	f := newFixture(t)
	before := len(f.srv.Requests())

	_, err := f.store.Create(context.Background(), entry.Draft{Title: "t", EmotionIntensity: 3})
	var gerr *gateway.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, gateway.ClientError, gerr.Kind)
	assert.Contains(t, gerr.Fields, "content")
	assert.Contains(t, gerr.Fields, "emotion_intensity")
	assert.Equal(t, before, len(f.srv.Requests()))
	assert.Empty(t, f.store.Entries())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()
	require.NoError(t, f.store.Refetch(ctx))

	title := "Stormy rain"
	m, err := f.store.Update(ctx, "2", entry.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, m.Title)

	es := f.store.Entries()
	assert.Equal(t, []entry.ID{"3", "2", "1"}, ids(es))
	assert.Equal(t, title, es[1].Title)

	prior := f.store.Entries()
	_, err = f.store.Update(ctx, "77", entry.Patch{Title: &title})
	assert.ErrorIs(t, err, gateway.ErrClient)
	assert.Equal(t, prior, f.store.Entries())
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	f.srv.Seed("alice",
		memory("42", "Walk", emotion.Joy, "2024-05-04"),
		memory("7", "Rain", emotion.Sadness, "2024-05-02"),
	)
	ctx := context.Background()
	require.NoError(t, f.store.Refetch(ctx))

	require.NoError(t, f.store.Delete(ctx, "42"))
	assert.Equal(t, []entry.ID{"7"}, ids(f.store.Entries()))

	prior := f.store.Entries()
	err := f.store.Delete(ctx, "99")
	assert.Equal(t, gateway.ClientError, gateway.KindOf(err))
	assert.Equal(t, prior, f.store.Entries())
	assert.Equal(t, gateway.ClientError, gateway.KindOf(f.store.Err()))
}

func TestUnauthorizedList(t *testing.T) {
	f := newFixture(t)
	seed(f)
	f.srv.Revoke("A1")

	err := f.store.Refetch(context.Background())
	assert.Equal(t, gateway.AuthExpired, gateway.KindOf(err))
	_, ok := f.creds.Get()
	assert.False(t, ok, "a 401 clears the credential")
	assert.Equal(t, gateway.AuthExpired, gateway.KindOf(f.store.Err()))
}

func TestGetRefreshesLocalCopy(t *testing.T) {
	f := newFixture(t)
	seed(f)
	ctx := context.Background()
	require.NoError(t, f.store.Refetch(ctx))

	title := "Remote edit"
	_, err := f.gw.UpdateMemory(ctx, "1", entry.Patch{Title: &title})
	require.NoError(t, err)

	m, err := f.store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, title, m.Title)
	assert.Equal(t, title, f.store.Entries()[2].Title)
}

func TestAnalyzeEmotion(t *testing.T) {
	f := newFixture(t)

	a, err := f.store.AnalyzeEmotion(context.Background(), "what a wonderful day")
	require.NoError(t, err)
	assert.Equal(t, emotion.Joy, a.Emotion)

	_, err = f.store.AnalyzeEmotion(context.Background(), " ")
	assert.ErrorIs(t, err, gateway.ErrClient)
}

func TestStateIsACopy(t *testing.T) {
	f := newFixture(t)
	seed(f)
	require.NoError(t, f.store.Refetch(context.Background()))

	st := f.store.State()
	st.Entries[0].Title = "mutated"
	assert.Equal(t, "Beach", f.store.Entries()[0].Title)
}
