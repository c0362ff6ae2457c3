package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Application statuses offered by the review screen.
var ApplicationStatuses = []string{"PENDING", "APPROVED", "REJECTED"}

// ListApplications returns the applications to the employer's jobs.
func (c *Client) ListApplications(ctx context.Context) ([]ApplicationDocument, error) {
	return list[ApplicationDocument](ctx, c, call{op: "fetch applications", method: http.MethodGet, path: "/api/application-documents/list-applications"})
}

// ApplicationsByStatus filters applications by status for one employer.
func (c *Client) ApplicationsByStatus(ctx context.Context, status, adminID string) ([]ApplicationDocument, error) {
	q := url.Values{"status": {status}, "adminId": {adminID}}
	return list[ApplicationDocument](ctx, c, call{op: "fetch application documents", method: http.MethodGet, path: "/api/application-documents/status", query: q})
}

// UpdateApplicationStatus moves application id to status.
func (c *Client) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	q := url.Values{"status": {status}}
	_, err := c.do(ctx, call{op: "update application status", method: http.MethodPut, path: "/api/application-documents/update-status/" + strconv.FormatInt(id, 10), query: q}, nil)
	return err
}

// DeleteApplication removes application id.
func (c *Client) DeleteApplication(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{op: "delete application document", method: http.MethodDelete, path: "/api/application-documents/delete/" + strconv.FormatInt(id, 10)}, nil)
	return err
}
