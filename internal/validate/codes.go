package validate

// Code identifies a user-input error shown next to the offending field.
type Code string

const (
	InvalidEmailShape      Code = "InvalidEmailShape"
	PasswordTooShort       Code = "PasswordTooShort"
	EmailAlreadyRegistered Code = "EmailAlreadyRegistered"
	BlankName              Code = "BlankName"
	PasswordMismatch       Code = "PasswordMismatch"
	NoSuchAccount          Code = "NoSuchAccount"
	WrongPassword          Code = "WrongPassword"
	SubjectRequired        Code = "SubjectRequired"
)

var messages = map[Code]string{
	InvalidEmailShape:      "Please enter a valid email address",
	PasswordTooShort:       "Password must be at least 6 characters",
	EmailAlreadyRegistered: "An account with this email already exists",
	BlankName:              "Please enter your full name",
	PasswordMismatch:       "Passwords do not match",
	NoSuchAccount:          "No account found with this email",
	WrongPassword:          "Incorrect password",
	SubjectRequired:        "Please enter a subject",
}

// Message returns the text displayed for the code.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return string(c)
}
