// Package jobs serves the employer's job postings.
package jobs

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jobhub/employer-console/internal/backend"
	"github.com/jobhub/employer-console/internal/shared"
)

// PageSize is the number of postings per listing page.
const PageSize = 5

// UnknownCategory labels jobs whose category is not in the catalog.
const UnknownCategory = "Unknown"

// ErrJobNotFound is returned when the job is not among the employer's postings.
var ErrJobNotFound = errors.New("jobs: job not found")

// Gateway is the slice of the backend client the job views use.
type Gateway interface {
	ListJobs(ctx context.Context) ([]backend.Job, error)
	ListCategories(ctx context.Context) ([]backend.Category, error)
	CreateJob(ctx context.Context, in backend.JobInput) (backend.JobResult, error)
	UpdateJob(ctx context.Context, id int64, in backend.JobInput) (backend.JobResult, error)
	DeleteJob(ctx context.Context, id int64) error
}

// Listing is a job joined with its category name.
type Listing struct {
	backend.Job
	CategoryName string
}

// Page is one page of the filtered job list.
type Page struct {
	Items      []Listing
	Filter     string
	Pagination shared.Pagination
}

// Service implements the job views on top of the backend.
type Service struct {
	gateway Gateway
}

// NewService constructs a Service.
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// List fetches jobs and categories concurrently, joins them, applies the
// filter and returns the requested page.
func (s *Service) List(ctx context.Context, filter string, page int) (Page, error) {
	var (
		jobs       []backend.Job
		categories []backend.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = s.gateway.ListJobs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.gateway.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	listings := Filter(Join(jobs, categories), filter)
	pagination := shared.NewPagination(page, PageSize, len(listings))
	start, end := pagination.Bounds()
	return Page{Items: listings[start:end], Filter: filter, Pagination: pagination}, nil
}

// Join attaches category names to jobs.
func Join(jobs []backend.Job, categories []backend.Category) []Listing {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.CategoryName
	}
	out := make([]Listing, 0, len(jobs))
	for _, j := range jobs {
		name, ok := names[j.CategoryID]
		if !ok {
			name = UnknownCategory
		}
		out = append(out, Listing{Job: j, CategoryName: name})
	}
	return out
}

// Filter keeps listings whose job name or recruitment details contain term,
// ignoring case. An empty term keeps everything.
func Filter(listings []Listing, term string) []Listing {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return listings
	}
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.JobName), term) || strings.Contains(strings.ToLower(l.RecruitmentDetails), term) {
			out = append(out, l)
		}
	}
	return out
}

// Categories returns the category choices of the job form.
func (s *Service) Categories(ctx context.Context) ([]backend.Category, error) {
	return s.gateway.ListCategories(ctx)
}

// Find looks a job up among the employer's postings. The backend has no
// single-job endpoint.
func (s *Service) Find(ctx context.Context, id int64) (backend.Job, error) {
	jobs, err := s.gateway.ListJobs(ctx)
	if err != nil {
		return backend.Job{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return backend.Job{}, ErrJobNotFound
}

// Create posts a job.
func (s *Service) Create(ctx context.Context, in backend.JobInput) (backend.JobResult, error) {
	return s.gateway.CreateJob(ctx, in)
}

// Update replaces a job.
func (s *Service) Update(ctx context.Context, id int64, in backend.JobInput) (backend.JobResult, error) {
	return s.gateway.UpdateJob(ctx, id, in)
}

// Delete removes a job.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.gateway.DeleteJob(ctx, id)
}

// InputFromJob pre-fills the update form.
func InputFromJob(j backend.Job) backend.JobInput {
	deadline := j.ApplicationDeadline
	if len(deadline) > 10 {
		deadline = deadline[:10]
	}
	return backend.JobInput{
		JobName:             j.JobName,
		Experience:          j.Experience.String(),
		Price:               j.Price.String(),
		ApplicationDeadline: deadline,
		RecruitmentDetails:  j.RecruitmentDetails,
		CategoryID:          j.CategoryID,
		Ranker:              j.Ranker,
		Quantity:            j.Quantity,
		WorkingForm:         j.WorkingForm,
		Gender:              j.Gender,
	}
}
