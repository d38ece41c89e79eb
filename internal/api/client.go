// internal/api/client.go
// Package api is the REST client for the marketplace backend. The backend
// owns all business rules; this client only moves JSON and surfaces errors
// with the user-visible message cascade.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	commonerrors "homecare-admin/internal/common/errors"
	commonhttp "homecare-admin/internal/common/http"
	"homecare-admin/internal/common/config"
	"homecare-admin/internal/common/logger"
	"homecare-admin/internal/models"
)

type Client struct {
	cfg config.BackendConfig
	hc  *commonhttp.Client
	log logger.Logger
}

func New(cfg config.BackendConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		hc:  commonhttp.NewCredentialedClient(config.GetDuration(cfg.RequestTimeout)),
		log: log.WithFields(map[string]interface{}{"component": "api-client"}),
	}
}

type listEnvelope struct {
	Items []map[string]interface{} `json:"items"`
}

// ==========================
// Worker applications
// ==========================

func (c *Client) ListApplications(ctx context.Context, status, q string) ([]map[string]interface{}, error) {
	var envelope listEnvelope
	if err := c.getJSON(ctx, "/api/admin/workerapplications", listQuery(status, q), &envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

func (c *Client) ApplicationCounts(ctx context.Context) (models.Counts, error) {
	var counts models.Counts
	err := c.getJSON(ctx, "/api/admin/workerapplications/count", nil, &counts)
	return counts, err
}

func (c *Client) ApproveApplication(ctx context.Context, id string) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/admin/workerapplications/%s/approve", url.PathEscape(id)), nil, nil)
}

// DeclineApplication validates the reason payload, posts it, and returns
// the backend's decision record (decided_at plus the echoed reasons).
func (c *Client) DeclineApplication(ctx context.Context, id string, d models.Decision) (models.Decision, error) {
	if err := ValidateDecision(d); err != nil {
		return models.Decision{}, err
	}
	var decided models.Decision
	err := c.postJSON(ctx, fmt.Sprintf("/api/admin/workerapplications/%s/decline", url.PathEscape(id)), d, &decided)
	return decided, err
}

// GroupDocuments fetches the loosely-shaped documents blob for an
// application's request group. Resolution happens in the documents package.
func (c *Client) GroupDocuments(ctx context.Context, groupID string) (map[string]interface{}, error) {
	var payload map[string]interface{}
	err := c.getJSON(ctx, fmt.Sprintf("/api/admin/workerapplications/group/%s", url.PathEscape(groupID)), nil, &payload)
	return payload, err
}

// ==========================
// Service requests
// ==========================

func (c *Client) ListServiceRequests(ctx context.Context, status, q string) ([]map[string]interface{}, error) {
	var envelope listEnvelope
	if err := c.getJSON(ctx, "/api/admin/servicerequests", listQuery(status, q), &envelope); err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

func (c *Client) ServiceRequestCounts(ctx context.Context) (models.Counts, error) {
	var counts models.Counts
	err := c.getJSON(ctx, "/api/admin/servicerequests/count", nil, &counts)
	return counts, err
}

func (c *Client) ApproveServiceRequest(ctx context.Context, id string) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/admin/servicerequests/%s/approve", url.PathEscape(id)), nil, nil)
}

func (c *Client) DeclineServiceRequest(ctx context.Context, id string, d models.Decision) (models.Decision, error) {
	if err := ValidateDecision(d); err != nil {
		return models.Decision{}, err
	}
	var decided models.Decision
	err := c.postJSON(ctx, fmt.Sprintf("/api/admin/servicerequests/%s/decline", url.PathEscape(id)), d, &decided)
	return decided, err
}

// GroupDetail fetches the full detail object for lazy hydration of an
// already-displayed row.
func (c *Client) GroupDetail(ctx context.Context, groupID string) (map[string]interface{}, error) {
	var payload map[string]interface{}
	err := c.getJSON(ctx, fmt.Sprintf("/api/clientservicerequests/by-group/%s", url.PathEscape(groupID)), nil, &payload)
	return payload, err
}

// ==========================
// Auth
// ==========================

// AdminIdentity is the profile the backend returns on a successful login.
type AdminIdentity struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Login authenticates against the backend. The backend session cookie lands
// in the client's jar and rides along on every later call.
func (c *Client) Login(ctx context.Context, email, password string) (AdminIdentity, error) {
	payload := map[string]string{"email": email, "password": password}
	var identity AdminIdentity
	err := c.postJSON(ctx, "/api/admin/login", payload, &identity)
	return identity, err
}

// ==========================
// Transport plumbing
// ==========================

func listQuery(status, q string) url.Values {
	values := url.Values{}
	if status != "" && status != "all" {
		values.Set("status", status)
	}
	if q != "" {
		values.Set("q", q)
	}
	return values
}

// isTimeout distinguishes a deadline hit from other transport failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.cfg.ListURL(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return commonerrors.NewFetchFailedError(path, "Could not reach the backend", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.hc.DoWithContext(ctx, req)
	if err != nil {
		if isTimeout(err) {
			return commonerrors.NewFetchTimeoutError(path)
		}
		return commonerrors.NewFetchFailedError(path, "Could not reach the backend", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return commonerrors.NewFetchFailedError(path, extractMessage(body, resp.Status), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return commonerrors.NewDecodeFailedError(path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	endpoint := c.cfg.ListURL(path)

	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return commonerrors.NewActionFailedError(path, "Could not encode the request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, reader)
	if err != nil {
		return commonerrors.NewActionFailedError(path, "Could not reach the backend", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.hc.DoWithContext(ctx, req)
	if err != nil {
		return commonerrors.NewActionFailedError(path, "Could not reach the backend", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return commonerrors.NewActionRejectedError(path, extractMessage(body, resp.Status))
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return commonerrors.NewDecodeFailedError(path, err)
	}
	return nil
}

// extractMessage implements the user-visible message cascade: the payload's
// message field, then its error field, then the transport status line.
func extractMessage(body []byte, status string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if status != "" {
		return "Request failed: " + status
	}
	return "Something went wrong. Please try again."
}
