package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"
)

// ListJobs returns the jobs posted by the current employer.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	return list[Job](ctx, c, call{op: "fetch jobs", method: http.MethodGet, path: "/employer/job/all-job-by-employer"})
}

// CreateJob posts a new job. A 2xx answer whose status field is not
// "success" yields a failed JobResult rather than an error.
func (c *Client) CreateJob(ctx context.Context, in JobInput) (JobResult, error) {
	var raw []byte
	status, err := c.do(ctx, call{op: "create job", method: http.MethodPost, path: "/employer/job/create", json: in}, &raw)
	if err != nil {
		return JobResult{}, err
	}
	parsed := gjson.ParseBytes(raw)
	if status == http.StatusOK && parsed.Get("status").String() == "success" {
		res := JobResult{Success: true, Message: firstNonEmpty(parsed.Get("message").String(), "Job created successfully")}
		if j := parsed.Get("job"); j.IsObject() {
			var job Job
			if err := json.Unmarshal([]byte(j.Raw), &job); err == nil {
				res.Job = &job
			}
		}
		return res, nil
	}
	return JobResult{Message: firstNonEmpty(parsed.Get("message").String(), "Failed to create job")}, nil
}

// UpdateJob replaces the editable fields of job id.
func (c *Client) UpdateJob(ctx context.Context, id int64, in JobInput) (JobResult, error) {
	var raw []byte
	status, err := c.do(ctx, call{op: "update job", method: http.MethodPut, path: "/employer/job/update/" + strconv.FormatInt(id, 10), json: in}, &raw)
	if err != nil {
		return JobResult{}, err
	}
	if status == http.StatusOK {
		return JobResult{Success: true, Message: "Job updated successfully"}, nil
	}
	return JobResult{Message: firstNonEmpty(gjson.GetBytes(raw, "message").String(), "Failed to update job")}, nil
}

// DeleteJob removes job id.
func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	_, err := c.do(ctx, call{op: "delete job", method: http.MethodDelete, path: "/employer/job/delete/" + strconv.FormatInt(id, 10)}, nil)
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
