// internal/lists/sources.go
// Package lists orchestrates fetch/refresh for the admin list views:
// debounced search, stale-response discard, optimistic decision patches and
// cross-view invalidation.
package lists

import (
	"context"

	"homecare-admin/internal/api"
	"homecare-admin/internal/mapper"
	"homecare-admin/internal/models"
	"homecare-admin/internal/view"
)

// Source abstracts one backend list: fetch, counts and decision actions.
type Source interface {
	Name() string
	Fetch(ctx context.Context, status, q string) ([]view.Row, error)
	Counts(ctx context.Context) (models.Counts, error)
	Approve(ctx context.Context, id string) error
	Decline(ctx context.Context, id string, d models.Decision) (models.Decision, error)
}

// ApplicationsSource serves the worker application list. Cancelled records
// are excluded by the mapper, once, at the mapping boundary.
type ApplicationsSource struct {
	Client *api.Client
}

func (s *ApplicationsSource) Name() string { return "applications" }

func (s *ApplicationsSource) Fetch(ctx context.Context, status, q string) ([]view.Row, error) {
	raws, err := s.Client.ListApplications(ctx, status, q)
	if err != nil {
		return nil, err
	}
	return applicationRows(mapper.Applications(raws)), nil
}

func (s *ApplicationsSource) Counts(ctx context.Context) (models.Counts, error) {
	return s.Client.ApplicationCounts(ctx)
}

func (s *ApplicationsSource) Approve(ctx context.Context, id string) error {
	return s.Client.ApproveApplication(ctx, id)
}

func (s *ApplicationsSource) Decline(ctx context.Context, id string, d models.Decision) (models.Decision, error) {
	return s.Client.DeclineApplication(ctx, id, d)
}

// CancellationsSource serves the dedicated cancelled-applications view.
// Decision actions do not apply there.
type CancellationsSource struct {
	Client *api.Client
}

func (s *CancellationsSource) Name() string { return "cancellations" }

func (s *CancellationsSource) Fetch(ctx context.Context, _, q string) ([]view.Row, error) {
	raws, err := s.Client.ListApplications(ctx, string(models.StatusCancelled), q)
	if err != nil {
		return nil, err
	}
	return applicationRows(mapper.CancelledApplications(raws)), nil
}

func (s *CancellationsSource) Counts(ctx context.Context) (models.Counts, error) {
	return s.Client.ApplicationCounts(ctx)
}

func (s *CancellationsSource) Approve(context.Context, string) error {
	return errActionUnsupported
}

func (s *CancellationsSource) Decline(context.Context, string, models.Decision) (models.Decision, error) {
	return models.Decision{}, errActionUnsupported
}

// RequestsSource serves the client service request list.
type RequestsSource struct {
	Client *api.Client
}

func (s *RequestsSource) Name() string { return "servicerequests" }

func (s *RequestsSource) Fetch(ctx context.Context, status, q string) ([]view.Row, error) {
	raws, err := s.Client.ListServiceRequests(ctx, status, q)
	if err != nil {
		return nil, err
	}
	return requestRows(mapper.ServiceRequests(raws)), nil
}

func (s *RequestsSource) Counts(ctx context.Context) (models.Counts, error) {
	return s.Client.ServiceRequestCounts(ctx)
}

func (s *RequestsSource) Approve(ctx context.Context, id string) error {
	return s.Client.ApproveServiceRequest(ctx, id)
}

func (s *RequestsSource) Decline(ctx context.Context, id string, d models.Decision) (models.Decision, error) {
	return s.Client.DeclineServiceRequest(ctx, id, d)
}

// Detail fetches the lazily hydrated group detail for one request.
func (s *RequestsSource) Detail(ctx context.Context, groupID string) (map[string]interface{}, error) {
	return s.Client.GroupDetail(ctx, groupID)
}

// Documents fetches the raw documents blob for an application group.
func (s *ApplicationsSource) Documents(ctx context.Context, groupID string) (map[string]interface{}, error) {
	return s.Client.GroupDocuments(ctx, groupID)
}

func applicationRows(rows []*models.ApplicationRow) []view.Row {
	out := make([]view.Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func requestRows(rows []*models.RequestRow) []view.Row {
	out := make([]view.Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
