package auth

// loginForm is the submitted login form.
type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// registerForm mirrors backend.Registration without the avatar bytes.
type registerForm struct {
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
}
