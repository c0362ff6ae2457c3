// Package applications serves the candidate applications sent to the
// employer's jobs.
package applications

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/shared"
)

// PageSize is the number of applications per page.
const PageSize = 5

// ErrStatusRequired is returned when a status update carries no status.
var ErrStatusRequired = errors.New("applications: status required")

// Gateway is the slice of the backend client the application views use.
type Gateway interface {
	ListApplications(ctx context.Context) ([]backend.ApplicationDocument, error)
	ApplicationsByStatus(ctx context.Context, status, adminID string) ([]backend.ApplicationDocument, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status string) error
	DeleteApplication(ctx context.Context, id int64) error
	ListJobs(ctx context.Context) ([]backend.Job, error)
}

// Query selects the applications to show.
type Query struct {
	Filter  string
	Status  string
	AdminID string
	Page    int
}

// Page is one page of applications, each carrying its job name.
type Page struct {
	Items      []backend.ApplicationDocument
	Query      Query
	Statuses   []string
	Pagination shared.Pagination
}

// Service implements the application views.
type Service struct {
	gateway Gateway
}

// NewService constructs a Service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// List fetches applications and jobs concurrently. A status narrows the
// applications through the backend's status query.
func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	var (
		docs []backend.ApplicationDocument
		jobs []backend.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if q.Status != "" {
			docs, err = s.gateway.ApplicationsByStatus(gctx, q.Status, q.AdminID)
		} else {
			docs, err = s.gateway.ListApplications(gctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		jobs, err = s.gateway.ListJobs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	items := Filter(JoinJobNames(docs, jobs), q.Filter)
	pagination := shared.NewPagination(q.Page, PageSize, len(items))
	start, end := pagination.Bounds()
	return Page{Items: items[start:end], Query: q, Statuses: backend.ApplicationStatuses, Pagination: pagination}, nil
}

// JoinJobNames sets each application's job name from the employer's jobs,
// "Unknown" when the job is gone.
func JoinJobNames(docs []backend.ApplicationDocument, jobs []backend.Job) []backend.ApplicationDocument {
	names := make(map[int64]string, len(jobs))
	for _, j := range jobs {
		names[j.ID] = j.JobName
	}
	out := make([]backend.ApplicationDocument, len(docs))
	for i, d := range docs {
		if name, ok := names[d.JobID]; ok {
			d.JobName = name
		} else {
			d.JobName = "Unknown"
		}
		out[i] = d
	}
	return out
}

// Filter keeps applications whose job name or details contain term, ignoring
// case.
func Filter(docs []backend.ApplicationDocument, term string) []backend.ApplicationDocument {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return docs
	}
	out := make([]backend.ApplicationDocument, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.JobName), term) || strings.Contains(strings.ToLower(d.Details), term) {
			out = append(out, d)
		}
	}
	return out
}

// UpdateStatus moves an application to status. The backend owns the set of
// valid statuses.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return ErrStatusRequired
	}
	return s.gateway.UpdateApplicationStatus(ctx, id, status)
}

// Delete removes an application.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.gateway.DeleteApplication(ctx, id)
}
