package auth

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/todos/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// copyCookies moves every Set-Cookie from a recorder onto a fresh request.
func copyCookies(w *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// requestWithSession builds an *http.Request that carries a valid session
// cookie for the given userID, written through StartSession.
func requestWithSession(t *testing.T, store sessions.Store, userID uuid.UUID) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	if err := StartSession(w, r, store, userID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	return copyCookies(w, http.MethodGet, "/api/todos")
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()
	userID := uuid.New()

	var captured uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = UserIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, requestWithSession(t, store, userID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured != userID {
		t.Fatalf("expected user %v in context, got %v", userID, captured)
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	store := newTestStore()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_TamperedCookie(t *testing.T) {
	store := newTestStore()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	r.AddCookie(&http.Cookie{Name: sessionName, Value: "garbage"})
	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_SessionMissingUserID(t *testing.T) {
	store := newTestStore()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	writeReq := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w1 := httptest.NewRecorder()
	session, _ := store.Get(writeReq, sessionName)
	// intentionally no session.Values[sessionUserIDKey]
	_ = session.Save(writeReq, w1)

	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, copyCookies(w1, http.MethodGet, "/api/todos"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_InvalidUserIDInSession(t *testing.T) {
	store := newTestStore()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	writeReq := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w1 := httptest.NewRecorder()
	session, _ := store.Get(writeReq, sessionName)
	session.Values[sessionUserIDKey] = "not-a-valid-uuid"
	_ = session.Save(writeReq, w1)

	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, copyCookies(w1, http.MethodGet, "/api/todos"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestEndSession_ExpiresCookie(t *testing.T) {
	store := newTestStore()
	r := requestWithSession(t, store, uuid.New())

	w := httptest.NewRecorder()
	if err := EndSession(w, r, store); err != nil {
		t.Fatalf("end session: %v", err)
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName {
			found = true
			if c.MaxAge >= 0 {
				t.Fatalf("expected negative MaxAge on logout cookie, got %d", c.MaxAge)
			}
		}
	}
	if !found {
		t.Fatal("expected logout to write a session cookie")
	}
}

// idStore keeps session values server-side and puts only the session ID in the
// cookie, the same split RedisStore makes.
type idStore struct {
	data map[string]map[any]any
	next int
}

func newIDStore() *idStore { return &idStore{data: map[string]map[any]any{}} }

func (s *idStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *idStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	session.Options = &sessions.Options{Path: "/", MaxAge: 3600}
	session.IsNew = true
	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	session.ID = c.Value
	if vals, ok := s.data[c.Value]; ok {
		maps.Copy(session.Values, vals)
		session.IsNew = false
	}
	return session, nil
}

func (s *idStore) Save(_ *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.ID == "" {
		s.next++
		session.ID = fmt.Sprintf("sid-%d", s.next)
	}
	s.data[session.ID] = maps.Clone(session.Values)
	http.SetCookie(w, sessions.NewCookie(session.Name(), session.ID, session.Options))
	return nil
}

func (s *idStore) Revoke(_ context.Context, session *sessions.Session) error {
	delete(s.data, session.ID)
	return nil
}

// resolve runs RequireAuth over a request carrying cookies and reports the
// user it resolved, or uuid.Nil with the response status.
func resolve(t *testing.T, store sessions.Store, cookies []*http.Cookie) (uuid.UUID, int) {
	t.Helper()

	var got uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserIDFromCtx(r.Context())
	})
	r := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, r)
	return got, w.Code
}

// loginWith calls StartSession on a request carrying cookies and returns the
// cookies it issued.
func loginWith(t *testing.T, store sessions.Store, cookies []*http.Cookie, userID uuid.UUID) []*http.Cookie {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	if err := StartSession(w, r, store, userID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	return w.Result().Cookies()
}

func TestStartSession_RotatesPlantedSession(t *testing.T) {
	store := newIDStore()
	attacker, victim := uuid.New(), uuid.New()

	planted := loginWith(t, store, nil, attacker)
	issued := loginWith(t, store, planted, victim)

	if issued[0].Value == planted[0].Value {
		t.Fatal("expected login to issue a new session id")
	}
	if got, code := resolve(t, store, planted); code != http.StatusUnauthorized {
		t.Fatalf("planted cookie: expected 401, got %d (user %v)", code, got)
	}
	if got, code := resolve(t, store, issued); code != http.StatusOK || got != victim {
		t.Fatalf("issued cookie: expected victim, got %v (status %d)", got, code)
	}
}

func TestStartSession_DropsPreviousValues(t *testing.T) {
	store := newTestStore()

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	w := httptest.NewRecorder()
	session, _ := store.Get(r, sessionName)
	session.Values["stale"] = "value"
	_ = session.Save(r, w)

	issued := loginWith(t, store, w.Result().Cookies(), uuid.New())

	check := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	for _, c := range issued {
		check.AddCookie(c)
	}
	got, _ := store.Get(check, sessionName)
	if _, ok := got.Values["stale"]; ok {
		t.Fatal("expected login to start from empty session values")
	}
}
