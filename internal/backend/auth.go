package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jobhub/employer-console/internal/shared"
)

// EmployerRole is the role the backend reports for employer accounts.
const EmployerRole = "ROLE_EMPLOYER"

// IdentitySink receives the identity fields persisted after login.
type IdentitySink interface {
	Set(key, value string)
	Delete(key string)
}

// Role asks the backend which role token belongs to.
func (c *Client) Role(ctx context.Context, token string) (string, error) {
	var body struct {
		Role string `json:"role"`
	}
	cl := call{op: "check role", method: http.MethodGet, path: "/check-role", token: token, explicitToken: true}
	if _, err := c.do(ctx, cl, &body); err != nil {
		return "", err
	}
	return body.Role, nil
}

// CheckRole reports whether token belongs to an account holding role.
func (c *Client) CheckRole(ctx context.Context, token, role string) (bool, error) {
	got, err := c.Role(ctx, token)
	if err != nil {
		return false, err
	}
	return sameRole(got, role), nil
}

// LoginEmployer authenticates the employer and writes token, id, email,
// names and avatar into sink. If the account turns out not to be an employer
// the token is removed again and ErrNotEmployer is returned.
func (c *Client) LoginEmployer(ctx context.Context, creds LoginRequest, sink IdentitySink) (*Employer, error) {
	var resp LoginResponse
	cl := call{op: "log in", method: http.MethodPost, path: "/login-employer", json: creds, anonymous: true}
	if _, err := c.do(ctx, cl, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrNoToken
	}

	sink.Set(shared.KeyToken, resp.Token)
	sink.Set(shared.KeyAdminID, strconv.FormatInt(resp.ID, 10))
	sink.Set(shared.KeyEmail, resp.Email)
	sink.Set(shared.KeyFirstName, resp.FirstName)
	sink.Set(shared.KeyLastName, resp.LastName)
	sink.Set(shared.KeyAvatar, resp.Avatar)

	ok, err := c.CheckRole(ctx, resp.Token, EmployerRole)
	if err != nil {
		sink.Delete(shared.KeyToken)
		return nil, err
	}
	if !ok {
		sink.Delete(shared.KeyToken)
		return nil, ErrNotEmployer
	}
	employer := resp.Employer
	return &employer, nil
}

// RegisterEmployer submits a registration and returns the backend's message.
func (c *Client) RegisterEmployer(ctx context.Context, reg Registration) (string, error) {
	form := &multipartBody{
		fields: []formField{
			{"email", reg.Email},
			{"password", reg.Password},
			{"firstName", reg.FirstName},
			{"lastName", reg.LastName},
			{"birthDate", reg.BirthDate},
			{"gender", reg.Gender},
			{"telephone", reg.Telephone},
			{"addressId", reg.AddressID},
			{"companyName", reg.CompanyName},
			{"scale", reg.Scale},
			{"fieldActivity", reg.FieldActivity},
		},
		file:      reg.Avatar,
		fileField: "avatar",
	}
	var raw []byte
	cl := call{op: "register employer", method: http.MethodPost, path: "/register-employer", form: form, anonymous: true}
	if _, err := c.do(ctx, cl, &raw); err != nil {
		return "", err
	}
	return messageOf(raw, "Registration successful."), nil
}

// UpdateEmployer updates the profile of the employer identified by email.
// The returned employer is nil when the backend answers with text only.
func (c *Client) UpdateEmployer(ctx context.Context, email string, upd ProfileUpdate) (*Employer, error) {
	fields := []formField{
		{"firstName", upd.FirstName},
		{"lastName", upd.LastName},
		{"gender", upd.Gender},
		{"telephone", upd.Telephone},
		{"companyName", upd.CompanyName},
		{"scale", upd.Scale},
		{"fieldActivity", upd.FieldActivity},
		{"addressId", upd.AddressID},
	}
	if upd.BirthDate != "" {
		fields = append(fields, formField{"birthDate", upd.BirthDate})
	}
	var raw []byte
	cl := call{
		op:     "update employer",
		method: http.MethodPut,
		path:   "/employer/update/" + url.PathEscape(email),
		form:   &multipartBody{fields: fields, file: upd.Avatar, fileField: "avatar"},
	}
	if _, err := c.do(ctx, cl, &raw); err != nil {
		return nil, err
	}
	var employer Employer
	if gjson.ValidBytes(raw) && gjson.GetBytes(raw, "email").Exists() {
		if err := json.Unmarshal(raw, &employer); err == nil {
			return &employer, nil
		}
	}
	return nil, nil
}

// GetEmployer fetches the profile of the employer identified by email.
func (c *Client) GetEmployer(ctx context.Context, email string) (*Employer, error) {
	var employer Employer
	cl := call{op: "fetch profile", method: http.MethodGet, path: "/employer/show-profile/" + url.PathEscape(email)}
	if _, err := c.do(ctx, cl, &employer); err != nil {
		return nil, err
	}
	return &employer, nil
}

func sameRole(got, want string) bool {
	norm := func(s string) string {
		return strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_")
	}
	return norm(got) != "" && norm(got) == norm(want)
}

// messageOf extracts a human message from a 2xx body.
func messageOf(raw []byte, fallback string) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fallback
	}
	if gjson.Valid(text) {
		parsed := gjson.Parse(text)
		if parsed.Type == gjson.String {
			return parsed.String()
		}
		if msg := parsed.Get("message"); msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
		return fallback
	}
	return text
}
