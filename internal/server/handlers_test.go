// internal/server/handlers_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homecare-admin/internal/api"
	"homecare-admin/internal/common/config"
	"homecare-admin/internal/common/database"
	"homecare-admin/internal/common/logger"
	"homecare-admin/internal/lists"
	"homecare-admin/internal/session"
)

const testCookie = "jdk_admin_session"

// harness spins up a fake marketplace backend, a miniredis, and the full
// console router in front of them.
type harness struct {
	server   *Server
	sessions *session.Store
}

func newHarness(t *testing.T, backend http.Handler) *harness {
	t.Helper()

	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { rdb.Close() })

	cfg := config.Config{
		Server:  config.ServerConfig{Address: ":0"},
		Backend: config.BackendConfig{BaseURL: backendSrv.URL, RequestTimeout: 5000},
		Views:   config.ViewsConfig{PageSize: 7},
		Session: config.SessionConfig{CookieName: testCookie, TTL: int(time.Hour / time.Millisecond)},
	}

	log := logger.Nop()
	client := api.New(cfg.Backend, log)
	sessions := session.NewStore(rdb, cfg.Session, log)

	appsSrc := &lists.ApplicationsSource{Client: client}
	reqsSrc := &lists.RequestsSource{Client: client}
	cancelsSrc := &lists.CancellationsSource{Client: client}

	ctx := context.Background()
	apps := lists.NewService(ctx, appsSrc, nil, nil, log)
	requests := lists.NewService(ctx, reqsSrc, nil, nil, log)
	cancels := lists.NewService(ctx, cancelsSrc, nil, nil, log)
	for _, svc := range []*lists.Service{apps, requests, cancels} {
		t.Cleanup(svc.Close)
	}

	srv := New(cfg, Deps{
		Applications:    apps,
		ServiceRequests: requests,
		Cancellations:   cancels,
		AppsSource:      appsSrc,
		RequestsSource:  reqsSrc,
		Backend:         client,
		Sessions:        sessions,
	}, log)

	return &harness{server: srv, sessions: sessions}
}

func (h *harness) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	sess, err := h.sessions.Create(context.Background(), session.Session{
		Role:  session.RoleAdmin,
		Email: "admin@jdkhomecare.ph",
	})
	require.NoError(t, err)
	return &http.Cookie{Name: testCookie, Value: sess.Token}
}

func (h *harness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func fixedBackend() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/workerapplications", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[
			{"id":"a1","status":"pending","info":{"first_name":"Ana"},"work":{"service_types":["Plumbing"]}},
			{"id":"a2","status":"approved","info":{"first_name":"Ben"},"work":{"service_types":["Carpentry"]}}
		]}`))
	})
	mux.HandleFunc("/api/admin/workerapplications/count", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pending":1,"approved":1,"total":2}`))
	})
	mux.HandleFunc("/api/admin/workerapplications/a1/approve", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/admin/workerapplications/group/g1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"primary_id_front_url":"front.png"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	})
	return mux
}

func TestViews_RequireSession(t *testing.T) {
	h := newHarness(t, fixedBackend())

	req := httptest.NewRequest(http.MethodGet, "/views/applications", nil)
	rec := h.do(t, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/login", body["redirect_to"])
}

func TestViews_Applications(t *testing.T) {
	h := newHarness(t, fixedBackend())

	req := httptest.NewRequest(http.MethodGet, "/views/applications?status=pending", nil)
	req.AddCookie(h.adminCookie(t))
	rec := h.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rows  []map[string]interface{} `json:"rows"`
		Total int                      `json:"total"`
		Pages int                      `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "a1", body.Rows[0]["id"])
	assert.Equal(t, "Ana", body.Rows[0]["full_name"])
	assert.Equal(t, 1, body.Pages)
}

func TestViews_Approve(t *testing.T) {
	h := newHarness(t, fixedBackend())
	cookie := h.adminCookie(t)

	// Load rows first so the optimistic patch has a target.
	load := httptest.NewRequest(http.MethodGet, "/views/applications", nil)
	load.AddCookie(cookie)
	require.Equal(t, http.StatusOK, h.do(t, load).Code)

	req := httptest.NewRequest(http.MethodPost, "/views/applications/a1/approve", nil)
	req.AddCookie(cookie)
	rec := h.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// Same tab again: no refetch, so the optimistic patch is visible.
	check := httptest.NewRequest(http.MethodGet, "/views/applications", nil)
	check.AddCookie(cookie)
	checkRec := h.do(t, check)

	var body struct {
		Rows []map[string]interface{} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(checkRec.Body.Bytes(), &body))

	statuses := map[string]string{}
	for _, row := range body.Rows {
		statuses[row["id"].(string)] = row["status"].(string)
	}
	assert.Equal(t, "approved", statuses["a1"])
}

func TestViews_SortToggle(t *testing.T) {
	h := newHarness(t, fixedBackend())
	cookie := h.adminCookie(t)

	toggle := func(key string) map[string]string {
		req := httptest.NewRequest(http.MethodPost, "/views/applications/sort",
			strings.NewReader(`{"key":"`+key+`"}`))
		req.AddCookie(cookie)
		rec := h.do(t, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	first := toggle("name")
	assert.Equal(t, "name", first["sort"])
	assert.Equal(t, "asc", first["dir"])

	// Clicking the active column flips the direction.
	second := toggle("name")
	assert.Equal(t, "desc", second["dir"])

	// A view request without explicit sort params follows the toggle state.
	view := httptest.NewRequest(http.MethodGet, "/views/applications", nil)
	view.AddCookie(cookie)
	rec := h.do(t, view)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rows []map[string]interface{} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Rows, 2)
	assert.Equal(t, "Ben", body.Rows[0]["full_name"])

	// Switching columns resets to ascending.
	reset := toggle("email")
	assert.Equal(t, "email", reset["sort"])
	assert.Equal(t, "asc", reset["dir"])
}

func TestViews_DocumentKind(t *testing.T) {
	h := newHarness(t, fixedBackend())
	cookie := h.adminCookie(t)

	req := httptest.NewRequest(http.MethodGet, "/views/applications/groups/g1/documents/primary_id_front", nil)
	req.AddCookie(cookie)
	rec := h.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "front.png", body["url"])
	assert.Equal(t, "primary_id_front", body["kind"])

	// A catalog kind with nothing attached answers 404.
	missing := httptest.NewRequest(http.MethodGet, "/views/applications/groups/g1/documents/nbi_clearance", nil)
	missing.AddCookie(cookie)
	assert.Equal(t, http.StatusNotFound, h.do(t, missing).Code)

	// So does a kind the catalog does not know.
	unknown := httptest.NewRequest(http.MethodGet, "/views/applications/groups/g1/documents/passport", nil)
	unknown.AddCookie(cookie)
	assert.Equal(t, http.StatusNotFound, h.do(t, unknown).Code)
}

func TestViews_DeclineInvalidPayload(t *testing.T) {
	h := newHarness(t, fixedBackend())

	req := httptest.NewRequest(http.MethodPost, "/views/applications/a1/decline",
		strings.NewReader(`{}`))
	req.AddCookie(h.adminCookie(t))
	rec := h.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViews_Documents(t *testing.T) {
	h := newHarness(t, fixedBackend())

	req := httptest.NewRequest(http.MethodGet, "/views/applications/groups/g1/documents", nil)
	req.AddCookie(h.adminCookie(t))
	rec := h.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		GroupID   string              `json:"group_id"`
		Documents map[string][]string `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "g1", body.GroupID)
	assert.Equal(t, []string{"front.png"}, body.Documents["primary_id_front"])
}

func TestHealthzIsPublic(t *testing.T) {
	h := newHarness(t, fixedBackend())

	rec := h.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginLogout(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"email":"admin@jdkhomecare.ph","role":"admin","first_name":"Dana"}`))
	})
	h := newHarness(t, backend)

	bad := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"admin@jdkhomecare.ph","password":"wrong"}`))
	assert.Equal(t, http.StatusConflict, h.do(t, bad).Code)

	good := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"admin@jdkhomecare.ph","password":"secret"}`))
	rec := h.do(t, good)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == testCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	require.NotEmpty(t, sessionCookie.Value)

	logout := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logout.AddCookie(sessionCookie)
	assert.Equal(t, http.StatusOK, h.do(t, logout).Code)

	_, err := h.sessions.Get(context.Background(), sessionCookie.Value)
	assert.Error(t, err)
}
