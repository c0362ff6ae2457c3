package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a string field the backend sometimes serialises as a number.
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(strings.TrimSpace(string(data)))
	return nil
}

// String implements fmt.Stringer.
func (t Text) String() string { return string(t) }

// Job is a job posting owned by the employer.
type Job struct {
	ID                  int64  `json:"id"`
	JobName             string `json:"jobName"`
	Experience          Text   `json:"experience"`
	Price               Text   `json:"price"`
	ApplicationDeadline string `json:"applicationDeadline"`
	RecruitmentDetails  string `json:"recruitmentDetails"`
	CategoryID          int64  `json:"categoryId"`
	Ranker              string `json:"ranker"`
	Quantity            int    `json:"quantity"`
	WorkingForm         string `json:"workingForm"`
	Gender              string `json:"gender"`
	Status              bool   `json:"status"`
	CreateAt            string `json:"createAt,omitempty"`
}

// JobInput is the body of job create and update calls.
type JobInput struct {
	JobName             string `json:"jobName" validate:"required"`
	Experience          string `json:"experience" validate:"required"`
	Price               string `json:"price" validate:"required"`
	ApplicationDeadline string `json:"applicationDeadline" validate:"required"`
	RecruitmentDetails  string `json:"recruitmentDetails" validate:"required"`
	CategoryID          int64  `json:"categoryId" validate:"required,gt=0"`
	Ranker              string `json:"ranker" validate:"required"`
	Quantity            int    `json:"quantity" validate:"required,gt=0"`
	WorkingForm         string `json:"workingForm" validate:"required"`
	Gender              string `json:"gender" validate:"required"`
}

// JobResult reports the outcome of a job create or update.
type JobResult struct {
	Success bool
	Message string
	Job     *Job
}

// Category is a job category.
type Category struct {
	ID           int64  `json:"id"`
	CategoryName string `json:"categoryName"`
}

// Address is a selectable location.
type Address struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ServicePack is a purchasable service.
type ServicePack struct {
	ID             int64   `json:"id"`
	ServiceName    string  `json:"serviceName"`
	Price          float64 `json:"price"`
	Description    string  `json:"description"`
	ValidityPeriod int     `json:"validityPeriod"`
}

// CartItem is one service line in the employer's cart.
type CartItem struct {
	ServiceID  int64   `json:"serviceId"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

// Cart is the employer's cart header.
type Cart struct {
	ID           int64   `json:"id"`
	TotalAmounts float64 `json:"totalAmounts"`
}

// OrderDetail is a purchased service line.
type OrderDetail struct {
	ServiceID           int64   `json:"serviceId"`
	Quantity            int     `json:"quantity"`
	Price               float64 `json:"price"`
	ActivationDate      string  `json:"activationDate,omitempty"`
	TotalValidityPeriod int     `json:"totalValidityPeriod"`
	TotalAmounts        float64 `json:"totalAmounts"`
}

// ApplicationDocument is a candidate's application to one of the employer's jobs.
type ApplicationDocument struct {
	ID        int64  `json:"id"`
	JobID     int64  `json:"jobId"`
	JobName   string `json:"jobName"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Letter    string `json:"letter"`
	Details   string `json:"details"`
	CV        string `json:"cv"`
	Status    string `json:"status"`
	CreateAt  string `json:"createAt,omitempty"`
}

// Employer is the profile returned by the backend.
type Employer struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Gender        string `json:"gender"`
	Telephone     string `json:"telephone"`
	BirthDate     string `json:"birthDate"`
	CompanyName   string `json:"companyName"`
	Scale         Text   `json:"scale"`
	FieldActivity string `json:"fieldActivity"`
	AddressID     int64  `json:"addressId"`
	Avatar        string `json:"avatar"`
}

// LoginRequest carries employer credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the login payload; it embeds the employer fields.
type LoginResponse struct {
	Token string `json:"token"`
	Employer
}

// Upload is an optional file attached to a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

// Registration is the multipart body of employer registration.
type Registration struct {
	Email         string `validate:"required,email"`
	Password      string `validate:"required,min=6"`
	FirstName     string `validate:"required"`
	LastName      string `validate:"required"`
	BirthDate     string
	Gender        string
	Telephone     string
	AddressID     string
	CompanyName   string `validate:"required"`
	Scale         string
	FieldActivity string
	Avatar        *Upload
}

// ProfileUpdate is the multipart body of a profile update.
type ProfileUpdate struct {
	FirstName     string `validate:"required"`
	LastName      string `validate:"required"`
	Gender        string
	Telephone     string
	BirthDate     string
	CompanyName   string `validate:"required"`
	Scale         string
	FieldActivity string
	AddressID     string
	Avatar        *Upload
}
