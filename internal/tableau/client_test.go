package tableau

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dsbrowser/internal/logging"
)

// ---- fake server ----

type fakeServer struct {
	*httptest.Server

	signInStatus int
	signInBody   string

	listStatus int
	listBody   string

	signOutStatus int
	dropSignOut   bool

	calls atomic.Int32

	mu         sync.Mutex
	lastSignIn signInRequest
	lastAuth   string
	paths      []string
}

func (f *fakeServer) record(r *http.Request) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)
	if auth := r.Header.Get(AuthHeaderName); auth != "" {
		f.lastAuth = auth
	}
}

func (f *fakeServer) snapshot() (signInRequest, string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSignIn, f.lastAuth, append([]string(nil), f.paths...)
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{
		signInStatus:  http.StatusOK,
		signInBody:    `{"credentials":{"token":"T1","site":{"id":"S1","contentUrl":"sales"},"user":{"id":"U1"}}}`,
		listStatus:    http.StatusOK,
		listBody:      `{"datasources":{"datasource":[]}}`,
		signOutStatus: http.StatusNoContent,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/3.19/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		var req signInRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.lastSignIn = req
		f.mu.Unlock()
		w.WriteHeader(f.signInStatus)
		_, _ = io.WriteString(w, f.signInBody)
	})
	mux.HandleFunc("GET /api/3.19/sites/{site}/datasources", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(f.listStatus)
		_, _ = io.WriteString(w, f.listBody)
	})
	mux.HandleFunc("POST /api/3.19/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.dropSignOut {
			hj, ok := w.(http.Hijacker)
			if !assert.True(t, ok) {
				return
			}
			conn, _, err := hj.Hijack()
			if assert.NoError(t, err) {
				_ = conn.Close()
			}
			return
		}
		w.WriteHeader(f.signOutStatus)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func newTestClient(f *fakeServer, opts ...Option) *Client {
	return NewClient(Credentials{
		ServerURL:      f.URL + "/",
		SiteContentURL: "sales",
		TokenName:      "ci-token",
		TokenSecret:    "s3cret",
	}, opts...)
}

// ---- SignIn ----

func TestSignIn_Success_StoresSession(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(f)

	res, err := c.SignIn(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &SignInResult{Token: "T1", SiteID: "S1", UserID: "U1"}, res)
	assert.Equal(t, "T1", c.AuthToken())
	assert.Equal(t, "S1", c.SiteID())
	assert.True(t, c.Authenticated())

	sent, _, paths := f.snapshot()
	assert.Equal(t, "ci-token", sent.Credentials.TokenName)
	assert.Equal(t, "s3cret", sent.Credentials.TokenSecret)
	assert.Equal(t, "sales", sent.Credentials.Site.ContentURL)
	assert.Equal(t, []string{"/api/3.19/auth/signin"}, paths, "trailing slash must be trimmed")
}

func TestSignIn_Unauthorized_ReturnsAuthenticationError(t *testing.T) {
	f := newFakeServer(t)
	f.signInStatus = http.StatusUnauthorized
	f.signInBody = `{"error":{"code":"401001","summary":"Signin Error"}}`
	c := newTestClient(f)

	res, err := c.SignIn(context.Background())
	require.Nil(t, res)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 401, authErr.StatusCode)
	assert.Equal(t, f.signInBody, authErr.Body)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Signin Error")

	assert.Empty(t, c.AuthToken())
	assert.Empty(t, c.SiteID())
	assert.False(t, c.Authenticated())
}

func TestSignIn_MissingCredentials_IsMalformed(t *testing.T) {
	f := newFakeServer(t)
	f.signInBody = `{"credentials":{"token":"T1"}}`
	c := newTestClient(f)

	_, err := c.SignIn(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.False(t, c.Authenticated())
	assert.Empty(t, c.AuthToken(), "token and site id are set together or not at all")
}

func TestSignIn_InvalidJSON_IsMalformed(t *testing.T) {
	f := newFakeServer(t)
	f.signInBody = `<tsResponse/>`
	c := newTestClient(f)

	_, err := c.SignIn(context.Background())
	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.False(t, c.Authenticated())
}

func TestSignIn_TransportError_Wrapped(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(f)
	f.Close()

	_, err := c.SignIn(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign-in request")

	var authErr *AuthenticationError
	assert.False(t, errors.As(err, &authErr))
}

func TestSignIn_UsesConfiguredAPIVersion(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Credentials{ServerURL: srv.URL}, WithAPIVersion("3.22"), WithTimeout(time.Second))
	_, err := c.SignIn(context.Background())
	require.Error(t, err)
	assert.Equal(t, "/api/3.22/auth/signin", gotPath.Load())
}

// ---- ListDataSources ----

func TestListDataSources_NotSignedIn_NoRequest(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(f)

	res, err := c.ListDataSources(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Nil(t, res)
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestListDataSources_ParsesRecords(t *testing.T) {
	f := newFakeServer(t)
	f.listBody = `{
	  "pagination": {"pageNumber": "1", "pageSize": "100", "totalAvailable": "3"},
	  "datasources": {"datasource": [
	    {"id": "d1", "name": "Sales", "type": "sqlserver", "createdAt": "2024-01-15T10:30:00Z",
	     "isCertified": true, "project": {"id": "p1", "name": "Finance"}, "owner": {"id": "o1", "name": "Alice"}},
	    {"id": "d2", "name": "Extract", "type": "hyper", "project": {"id": "p2", "name": ""}},
	    {"id": "d3", "name": "", "createdAt": "yesterday"}
	  ]}
	}`
	c := newTestClient(f)
	_, err := c.SignIn(context.Background())
	require.NoError(t, err)

	res, err := c.ListDataSources(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 3)

	_, auth, paths := f.snapshot()
	assert.Equal(t, "T1", auth)
	require.Len(t, paths, 2)
	assert.Equal(t, "/api/3.19/sites/S1/datasources", paths[1])

	first := res[0]
	assert.Equal(t, "Sales", first.Name)
	require.NotNil(t, first.Type)
	assert.Equal(t, "sqlserver", *first.Type)
	require.NotNil(t, first.ProjectName)
	assert.Equal(t, "Finance", *first.ProjectName)
	require.NotNil(t, first.OwnerName)
	assert.Equal(t, "Alice", *first.OwnerName)
	require.NotNil(t, first.CreatedAt)
	assert.True(t, first.CreatedAt.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
	assert.True(t, first.IsCertified)

	second := res[1]
	assert.Nil(t, second.ProjectName, "empty project name counts as absent")
	assert.Nil(t, second.OwnerName)
	assert.Nil(t, second.CreatedAt)
	assert.False(t, second.IsCertified)

	third := res[2]
	assert.Nil(t, third.Type)
	assert.Nil(t, third.CreatedAt, "unparsable timestamps are dropped")
	assert.Equal(t, "Unnamed Data Source", third.DisplayName())
}

func TestListDataSources_AbsentList_IsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"no datasources":  `{"pagination":{"pageNumber":"1","pageSize":"100","totalAvailable":"0"}}`,
		"no datasource":   `{"datasources":{}}`,
		"empty object":    `{}`,
		"null datasource": `{"datasources":{"datasource":null}}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFakeServer(t)
			f.listBody = body
			c := newTestClient(f)
			_, err := c.SignIn(context.Background())
			require.NoError(t, err)

			res, err := c.ListDataSources(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, res)
			assert.Empty(t, res)
		})
	}
}

func TestListDataSources_ServerError_ReturnsAPIRequestError(t *testing.T) {
	f := newFakeServer(t)
	f.listStatus = http.StatusForbidden
	f.listBody = "forbidden"
	c := newTestClient(f)
	_, err := c.SignIn(context.Background())
	require.NoError(t, err)

	_, err = c.ListDataSources(context.Background())

	var apiErr *APIRequestError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
	assert.Equal(t, "forbidden", apiErr.Body)
	assert.Equal(t, "data source request error: 403 - forbidden", err.Error())
	assert.True(t, c.Authenticated(), "a failed listing keeps the session")
}

// ---- SignOut ----

func TestSignOut_NoSession_NoRequest(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(f)

	c.SignOut(context.Background())
	assert.Equal(t, int32(0), f.calls.Load())
}

func TestSignOut_Success_ClearsSession(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(f)
	_, err := c.SignIn(context.Background())
	require.NoError(t, err)

	c.SignOut(context.Background())

	_, auth, paths := f.snapshot()
	assert.Equal(t, "T1", auth)
	assert.Equal(t, "/api/3.19/auth/signout", paths[len(paths)-1])
	assert.False(t, c.Authenticated())
	assert.Empty(t, c.AuthToken())
	assert.Empty(t, c.SiteID())

	_, err = c.ListDataSources(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSignOut_NetworkFailure_StillClearsAndLogs(t *testing.T) {
	f := newFakeServer(t)
	f.dropSignOut = true

	var buf bytes.Buffer
	c := newTestClient(f, WithLogger(logging.New(&buf, false)))
	_, err := c.SignIn(context.Background())
	require.NoError(t, err)

	c.SignOut(context.Background())

	assert.Empty(t, c.AuthToken())
	assert.Empty(t, c.SiteID())
	assert.Contains(t, buf.String(), "sign out failed")
}

func TestSignOut_ServerDown_StillClears(t *testing.T) {
	f := newFakeServer(t)
	c := newTestClient(f)
	_, err := c.SignIn(context.Background())
	require.NoError(t, err)
	f.Close()

	c.SignOut(context.Background())
	assert.False(t, c.Authenticated())
}

func TestSignOut_Rejected_StillClearsAndLogs(t *testing.T) {
	f := newFakeServer(t)
	f.signOutStatus = http.StatusInternalServerError

	var buf bytes.Buffer
	c := newTestClient(f, WithLogger(logging.New(&buf, false)))
	_, err := c.SignIn(context.Background())
	require.NoError(t, err)

	c.SignOut(context.Background())
	assert.False(t, c.Authenticated())
	assert.True(t, strings.Contains(buf.String(), "status=500"), buf.String())
}
