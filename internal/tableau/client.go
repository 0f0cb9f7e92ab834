package tableau

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/dmitrijs2005/dsbrowser/internal/logging"
	"github.com/dmitrijs2005/dsbrowser/internal/models"
)

const (
	// DefaultAPIVersion is the REST API version used in every endpoint path.
	DefaultAPIVersion = "3.19"

	// AuthHeaderName carries the session token on authenticated requests.
	AuthHeaderName = "X-Tableau-Auth"

	contentTypeJSON = "application/json"
)

// Credentials identify the site and the Personal Access Token to sign in with.
type Credentials struct {
	ServerURL      string
	SiteContentURL string
	TokenName      string
	TokenSecret    string
}

// SignInResult is what a successful sign-in yields.
type SignInResult struct {
	Token  string
	SiteID string
	UserID string
}

// Client talks to one Tableau site. The auth token and the site id are
// always set together and cleared together.
type Client struct {
	creds      Credentials
	serverURL  string
	apiVersion string
	httpClient *http.Client
	log        logging.Logger

	authToken string
	siteID    string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request made by the default HTTP client.
// It has no effect together with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithAPIVersion overrides DefaultAPIVersion.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithLogger sets the logger used for request tracing and swallowed
// sign-out failures.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client for creds. Trailing slashes of the server URL
// are dropped.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		serverURL:  strings.TrimRight(creds.ServerURL, "/"),
		apiVersion: DefaultAPIVersion,
		httpClient: cleanhttp.DefaultPooledClient(),
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthToken returns the current session token, or "" without a session.
func (c *Client) AuthToken() string { return c.authToken }

// SiteID returns the id of the signed-in site, or "" without a session.
func (c *Client) SiteID() string { return c.siteID }

// Authenticated reports whether SignIn succeeded and SignOut has not run since.
func (c *Client) Authenticated() bool {
	return c.authToken != "" && c.siteID != ""
}

func (c *Client) endpoint(parts ...string) string {
	return c.serverURL + "/api/" + c.apiVersion + "/" + strings.Join(parts, "/")
}

// SignIn exchanges the Personal Access Token for a session. On success the
// token and site id are stored on the client. A non-2xx answer yields an
// *AuthenticationError and leaves the client without a session.
func (c *Client) SignIn(ctx context.Context) (*SignInResult, error) {
	body, err := json.Marshal(signInRequest{Credentials: patCredentials{
		TokenName:   c.creds.TokenName,
		TokenSecret: c.creds.TokenSecret,
		Site:        siteRef{ContentURL: c.creds.SiteContentURL},
	}})
	if err != nil {
		return nil, fmt.Errorf("encode sign-in request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("auth", "signin"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)

	c.log.Debug(ctx, "signing in", "url", req.URL.String(), "site", c.creds.SiteContentURL, "token_name", c.creds.TokenName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign-in request: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var sr signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode sign-in response: %w: %w", ErrMalformedResponse, err)
	}
	if sr.Credentials == nil || sr.Credentials.Token == "" || sr.Credentials.Site == nil || sr.Credentials.Site.ID == "" {
		return nil, fmt.Errorf("sign-in response without token or site id: %w", ErrMalformedResponse)
	}

	c.authToken = sr.Credentials.Token
	c.siteID = sr.Credentials.Site.ID

	res := &SignInResult{Token: c.authToken, SiteID: c.siteID}
	if sr.Credentials.User != nil {
		res.UserID = sr.Credentials.User.ID
	}
	c.log.Info(ctx, "signed in", "site_id", c.siteID)
	return res, nil
}

// ListDataSources returns the data sources of the signed-in site in server
// order. A response without a datasources list is an empty result.
func (c *Client) ListDataSources(ctx context.Context) ([]models.DataSource, error) {
	if !c.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("sites", url.PathEscape(c.siteID), "datasources"), nil)
	if err != nil {
		return nil, fmt.Errorf("data source request: %w", err)
	}
	req.Header.Set(AuthHeaderName, c.authToken)
	req.Header.Set("Accept", contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data source request: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, &APIRequestError{Op: "data source request", StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var dr dataSourcesResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode data source response: %w: %w", ErrMalformedResponse, err)
	}

	result := make([]models.DataSource, 0)
	if dr.DataSources == nil {
		return result, nil
	}
	for _, r := range dr.DataSources.DataSource {
		result = append(result, r.toModel())
	}
	c.log.Debug(ctx, "listed data sources", "count", len(result))
	return result, nil
}

// SignOut ends the session. Without a session it does nothing. The remote
// call is best-effort: its failures are logged, never returned, and the
// local token and site id are cleared in every case.
func (c *Client) SignOut(ctx context.Context) {
	if c.authToken == "" {
		return
	}
	defer c.clearSession()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("auth", "signout"), nil)
	if err != nil {
		c.log.Warn(ctx, "sign out failed", "error", err)
		return
	}
	req.Header.Set(AuthHeaderName, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn(ctx, "sign out failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		c.log.Warn(ctx, "sign out rejected", "status", resp.StatusCode, "body", readBody(resp.Body))
		return
	}
	c.log.Info(ctx, "signed out")
}

func (c *Client) clearSession() {
	c.authToken = ""
	c.siteID = ""
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// readBody returns the response text for error reporting. Read failures
// yield whatever was read so far.
func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	return strings.TrimSpace(string(b))
}
