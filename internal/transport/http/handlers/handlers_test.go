package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/eventhub/internal/auth"
	"github.com/eleven-am/eventhub/internal/domain"
	"github.com/eleven-am/eventhub/internal/orm"
	"github.com/eleven-am/eventhub/internal/service"
	"github.com/eleven-am/eventhub/internal/transport/http/middleware"
)

// Minimal stub services recording the last call

type stubEvents struct {
	opts      orm.QueryOptions
	eager     bool
	owner     uuid.UUID
	principal uuid.UUID
	created   domain.NewEvent
	patch     domain.EventPatch
	err       error
}

func (s *stubEvents) List(ctx context.Context, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.Event], error) {
	s.opts, s.eager = opts, eager
	if s.err != nil {
		return nil, s.err
	}
	return &orm.PageResult[domain.Event]{Founds: []domain.Event{}, SearchOptions: orm.SearchMetadata{Page: 1}}, nil
}
func (s *stubEvents) ListByOwner(ctx context.Context, ownerID uuid.UUID, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.Event], error) {
	s.owner = ownerID
	return s.List(ctx, opts, eager)
}
func (s *stubEvents) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Event{ID: id}, nil
}
func (s *stubEvents) Create(ctx context.Context, principal uuid.UUID, in domain.NewEvent) (*domain.Event, error) {
	s.principal, s.created = principal, in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Event{ID: uuid.New(), Name: in.Name, OwnerID: principal}, nil
}
func (s *stubEvents) Update(ctx context.Context, principal, id uuid.UUID, patch domain.EventPatch) (*domain.Event, error) {
	s.principal, s.patch = principal, patch
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Event{ID: id}, nil
}
func (s *stubEvents) Delete(ctx context.Context, principal, id uuid.UUID) error {
	s.principal = principal
	return s.err
}

type stubAuth struct {
	email, password string
	err             error
}

func (s *stubAuth) SignUp(ctx context.Context, in service.SignUpInput) (*service.Session, error) {
	s.email, s.password = in.Email, in.Password
	if s.err != nil {
		return nil, s.err
	}
	return &service.Session{AccessToken: "tok", TokenType: "Bearer"}, nil
}
func (s *stubAuth) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	s.email, s.password = email, password
	if s.err != nil {
		return nil, s.err
	}
	return &service.Session{AccessToken: "tok", TokenType: "Bearer"}, nil
}
func (s *stubAuth) GoogleSignIn(ctx context.Context, idToken string) (*service.Session, error) {
	return s.SignIn(ctx, "", idToken)
}

type stubRecorder struct{ calls []string }

func (s *stubRecorder) RecordAuth(method string, success bool) {
	status := "ok"
	if !success {
		status = "fail"
	}
	s.calls = append(s.calls, method+":"+status)
}

type stubUsers struct {
	id     uuid.UUID
	update service.ProfileUpdate
}

func (s *stubUsers) List(ctx context.Context, opts orm.QueryOptions, eager bool) (*orm.PageResult[domain.User], error) {
	return &orm.PageResult[domain.User]{}, nil
}
func (s *stubUsers) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.id = id
	return &domain.User{ID: id}, nil
}
func (s *stubUsers) UpdateProfile(ctx context.Context, id uuid.UUID, in service.ProfileUpdate) (*domain.User, error) {
	s.id, s.update = id, in
	return &domain.User{ID: id}, nil
}
func (s *stubUsers) Delete(ctx context.Context, id uuid.UUID) error {
	s.id = id
	return nil
}

func withPrincipal(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), auth.Claims{UserID: id, Role: auth.RoleUser}))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestParseListRequest(t *testing.T) {
	t.Run("reserved keys and filters", func(t *testing.T) {
		values := url.Values{
			"page":         {"2"},
			"page_size":    {"10"},
			"ordering":     {"-date"},
			"eager":        {"true"},
			"name__ilike":  {"jazz"},
			"evt_type":     {"public"},
			"location__in": {"Hall A", "Hall B"},
		}

		req, err := ParseListRequest(values, 100)
		require.NoError(t, err)

		assert.Equal(t, 2, req.Options.Page)
		assert.Equal(t, orm.PageSizeOf(10), req.Options.PageSize)
		assert.Equal(t, "-date", req.Options.Ordering)
		assert.True(t, req.Eager)
		assert.Equal(t, map[string]interface{}{
			"name__ilike":  "jazz",
			"evt_type":     "public",
			"location__in": []string{"Hall A", "Hall B"},
		}, req.Options.Filters)
	})

	t.Run("all is accepted regardless of the maximum", func(t *testing.T) {
		req, err := ParseListRequest(url.Values{"page_size": {"all"}}, 5)
		require.NoError(t, err)
		assert.True(t, req.Options.PageSize.IsAll())
		assert.Nil(t, req.Options.Filters)
	})

	tests := []struct {
		name  string
		query url.Values
	}{
		{name: "non-numeric page", query: url.Values{"page": {"two"}}},
		{name: "zero page", query: url.Values{"page": {"0"}}},
		{name: "negative page", query: url.Values{"page": {"-3"}}},
		{name: "zero page size", query: url.Values{"page_size": {"0"}}},
		{name: "page size over max", query: url.Values{"page_size": {"500"}}},
		{name: "bad eager", query: url.Values{"eager": {"maybe"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListRequest(tt.query, 100)
			assert.ErrorIs(t, err, orm.ErrValidation)
		})
	}
}

func TestEventsHandler(t *testing.T) {
	principal := uuid.New()

	t.Run("list passes parsed options", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)

		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/events?page=1&page_size=2&ordering=-created_at", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "-created_at", svc.opts.Ordering)
		assert.Contains(t, rec.Body.String(), `"founds":[]`)
		assert.Contains(t, rec.Body.String(), `"search_options"`)
	})

	t.Run("page zero is rejected before the service runs", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)

		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/events?page=0", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_error", errorCode(t, rec))
		assert.Equal(t, orm.QueryOptions{}, svc.opts)
	})

	t.Run("unknown filter field maps to 400", func(t *testing.T) {
		svc := &stubEvents{err: orm.SchemaError("events", "colour", "unknown filter field %q", "colour")}
		h := NewEventsHandler(svc, 100)

		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/events?colour=red", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "schema_error", errorCode(t, rec))
	})

	t.Run("list by owner", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)
		owner := uuid.New()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/users/x/events", nil), "id", owner.String())
		rec := httptest.NewRecorder()
		h.ListByOwner(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, owner, svc.owner)
	})

	t.Run("get rejects a malformed id", func(t *testing.T) {
		h := NewEventsHandler(&stubEvents{}, 100)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/events/nope", nil), "id", "nope")
		rec := httptest.NewRecorder()
		h.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_error", errorCode(t, rec))
	})

	t.Run("create uses the principal as owner", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)

		body := `{"name":"Jazz night","date":"2024-06-01T20:00:00Z","categories":["Music","Art"]}`
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)), principal)
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, principal, svc.principal)
		assert.Equal(t, []string{"Music", "Art"}, svc.created.Categories)
		assert.Equal(t, time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), svc.created.Date.UTC())
		assert.Nil(t, svc.created.StartTime)
	})

	t.Run("create parses start and end times", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)

		body := `{"name":"Jazz night","date":"2024-06-01T00:00:00Z","start_time":"20:00","end_time":"23:30:00"}`
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)), principal)
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.created.StartTime)
		require.NotNil(t, svc.created.EndTime)
		assert.Equal(t, domain.TimeOfDay{Hour: 20}, *svc.created.StartTime)
		assert.Equal(t, "23:30:00", svc.created.EndTime.String())
	})

	t.Run("create validates the body", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)

		tests := map[string]string{
			"missing name":  `{"date":"2024-06-01T20:00:00Z"}`,
			"bad type":      `{"name":"x","date":"2024-06-01T20:00:00Z","evt_type":"secret"}`,
			"unknown field": `{"name":"x","date":"2024-06-01T20:00:00Z","owner_id":"abc"}`,
			"trailing data": `{"name":"x","date":"2024-06-01T20:00:00Z"}{}`,
			"bad start":     `{"name":"x","date":"2024-06-01T20:00:00Z","start_time":"8pm"}`,
		}
		for name, body := range tests {
			t.Run(name, func(t *testing.T) {
				req := withPrincipal(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)), principal)
				rec := httptest.NewRecorder()
				h.Create(rec, req)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, "validation_error", errorCode(t, rec))
			})
		}
	})

	t.Run("update distinguishes absent from empty categories", func(t *testing.T) {
		svc := &stubEvents{}
		h := NewEventsHandler(svc, 100)
		id := uuid.New()

		serve := func(body string) {
			req := withURLParam(httptest.NewRequest(http.MethodPatch, "/events/"+id.String(), strings.NewReader(body)), "id", id.String())
			req = withPrincipal(req, principal)
			rec := httptest.NewRecorder()
			h.Update(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		serve(`{"location":"Hall B"}`)
		assert.False(t, svc.patch.Categories.IsSet())
		assert.Equal(t, "Hall B", svc.patch.Location.OrElse(""))

		serve(`{"end_time":"22:15"}`)
		end, ok := svc.patch.EndTime.Get()
		assert.True(t, ok)
		assert.Equal(t, "22:15:00", end.String())
		assert.False(t, svc.patch.StartTime.IsSet())

		serve(`{"categories":[]}`)
		cats, ok := svc.patch.Categories.Get()
		assert.True(t, ok)
		assert.Empty(t, cats)
	})

	t.Run("delete of someone else's event is 404", func(t *testing.T) {
		svc := &stubEvents{err: orm.NotFoundError("delete", "events")}
		h := NewEventsHandler(svc, 100)
		id := uuid.New()

		req := withPrincipal(withURLParam(httptest.NewRequest(http.MethodDelete, "/events/"+id.String(), nil), "id", id.String()), principal)
		rec := httptest.NewRecorder()
		h.Delete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, principal, svc.principal)
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("sign in", func(t *testing.T) {
		svc, rec := &stubAuth{}, &stubRecorder{}
		h := NewAuthHandler(svc, rec)

		w := httptest.NewRecorder()
		h.SignIn(w, httptest.NewRequest(http.MethodPost, "/auth/sign-in", strings.NewReader(`{"email":"ada@example.com","password":"pw"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"access_token":"tok"`)
		assert.Equal(t, "ada@example.com", svc.email)
		assert.Equal(t, []string{"password:ok"}, rec.calls)
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		svc, rec := &stubAuth{err: service.ErrUnauthorized}, &stubRecorder{}
		h := NewAuthHandler(svc, rec)

		w := httptest.NewRecorder()
		h.SignIn(w, httptest.NewRequest(http.MethodPost, "/auth/sign-in", strings.NewReader(`{"email":"ada@example.com","password":"pw"}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, []string{"password:fail"}, rec.calls)
	})

	t.Run("sign up validates email and password", func(t *testing.T) {
		svc := &stubAuth{}
		h := NewAuthHandler(svc, nil)

		w := httptest.NewRecorder()
		h.SignUp(w, httptest.NewRequest(http.MethodPost, "/auth/sign-up", strings.NewReader(`{"email":"not-an-email","password":"long enough"}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email must be a valid email")

		w = httptest.NewRecorder()
		h.SignUp(w, httptest.NewRequest(http.MethodPost, "/auth/sign-up", strings.NewReader(`{"email":"a@b.co","password":"short"}`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "password must be at least 8 characters")
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		svc := &stubAuth{err: &orm.Error{Op: "insert", Table: "users", Constraint: "users_email_key", Err: orm.ErrDuplicated}}
		h := NewAuthHandler(svc, nil)

		w := httptest.NewRecorder()
		h.SignUp(w, httptest.NewRequest(http.MethodPost, "/auth/sign-up", strings.NewReader(`{"email":"a@b.co","password":"long enough"}`)))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUsersHandler(t *testing.T) {
	principal := uuid.New()

	t.Run("update me forwards only present fields", func(t *testing.T) {
		svc := &stubUsers{}
		h := NewUsersHandler(svc, 100)

		body := `{"first_name":"Ada","phone_no":"","old_password":"old","new_password":"new password"}`
		req := withPrincipal(httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(body)), principal)
		rec := httptest.NewRecorder()
		h.UpdateMe(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, principal, svc.id)
		assert.Equal(t, domain.Some("Ada"), svc.update.FirstName)
		assert.Equal(t, domain.Some(""), svc.update.PhoneNo)
		assert.False(t, svc.update.Email.IsSet())
		assert.Equal(t, "old", svc.update.OldPassword)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("delete me", func(t *testing.T) {
		svc := &stubUsers{}
		h := NewUsersHandler(svc, 100)

		rec := httptest.NewRecorder()
		h.DeleteMe(rec, withPrincipal(httptest.NewRequest(http.MethodDelete, "/users/me", nil), principal))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, principal, svc.id)
	})
}
