package validation

import (
	"fmt"
	"regexp"
	"slices"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/constants"
)

// RegistrationInput is the raw registration form.
type RegistrationInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Image           *capture.File
}

// LoginInput is the raw login form. Nil means the field was not provided.
type LoginInput struct {
	Email    string
	Password *string
	Image    *capture.File
}

const (
	msgInvalidEmail     = "Invalid email address"
	msgPasswordRequired = "Password is required"
	msgConfirmRequired  = "Please confirm your password"
	msgPasswordMismatch = "Passwords don't match"
	msgImageRequired    = "Please select an image file"
	msgImageType        = "File type must be JPEG, PNG, or WebP"
	msgImageInvalid     = "Invalid image data provided"
)

var (
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Schema holds the rule lists for both forms.
type Schema struct {
	limits   Limits
	inspect  bool
	validate *validator.Validate

	email    []Rule[string]
	password []Rule[string]
	image    []Rule[*capture.File]
	geometry []Rule[capture.ImageInfo]
}

// Option configures a Schema.
type Option func(*Schema)

// WithImageInspection additionally decodes the image header and checks its
// resolution.
func WithImageInspection(enabled bool) Option {
	return func(s *Schema) {
		s.inspect = enabled
	}
}

// NewSchema builds the rule lists for the given limits.
func NewSchema(limits Limits, opts ...Option) *Schema {
	s := &Schema{limits: limits, validate: validator.New()}
	for _, opt := range opts {
		opt(s)
	}

	s.email = []Rule[string]{
		{Message: msgInvalidEmail, Test: s.isEmail},
	}

	s.password = []Rule[string]{
		{
			Message: fmt.Sprintf("Must be at least %d characters long", limits.MinPasswordLength),
			Test:    func(p string) bool { return utf8.RuneCountInString(p) >= limits.MinPasswordLength },
		},
		{Message: "Must contain at least one lowercase letter", Test: lowercaseRe.MatchString},
		{Message: "Must contain at least one uppercase letter", Test: uppercaseRe.MatchString},
		{Message: "Must contain at least one number", Test: digitRe.MatchString},
		{Message: "Must contain at least one special character", Test: specialRe.MatchString},
	}

	s.image = []Rule[*capture.File]{
		{
			Message: fmt.Sprintf("File size must be less than %d MB", limits.MaxImageSizeMB),
			Test:    func(f *capture.File) bool { return f.Size() <= limits.maxImageBytes() },
		},
		{
			Message: msgImageType,
			Test:    func(f *capture.File) bool { return slices.Contains(limits.AllowedImageTypes, f.MIMEType) },
		},
	}

	s.geometry = []Rule[capture.ImageInfo]{
		{
			Message: fmt.Sprintf("Image resolution must be at least %dx%d pixels", limits.MinWidth, limits.MinHeight),
			Test:    func(i capture.ImageInfo) bool { return i.Width >= limits.MinWidth && i.Height >= limits.MinHeight },
		},
		{
			Message: fmt.Sprintf("Image resolution must not exceed %dx%d pixels", limits.MaxWidth, limits.MaxHeight),
			Test:    func(i capture.ImageInfo) bool { return i.Width <= limits.MaxWidth && i.Height <= limits.MaxHeight },
		},
	}

	return s
}

// Registration validates a registration form. Email, password, confirmation
// and image are all required.
func (s *Schema) Registration(in RegistrationInput) Result[RegistrationInput] {
	in.Email = NormalizeEmail(in.Email)

	return newResult(in, Collect(
		Check(constants.FieldEmail, in.Email, s.email),
		s.checkPassword(in.Password),
		s.checkConfirmation(in.Password, in.ConfirmPassword),
		s.checkImage(in.Image, true),
	))
}

// Login validates a login form. Password and image are each optional and
// skipped when absent; a given password goes through the registration rules.
func (s *Schema) Login(in LoginInput) Result[LoginInput] {
	in.Email = NormalizeEmail(in.Email)

	var password []Violation
	if in.Password != nil {
		password = s.checkPassword(*in.Password)
	}

	return newResult(in, Collect(
		Check(constants.FieldEmail, in.Email, s.email),
		password,
		s.checkImage(in.Image, false),
	))
}

func (s *Schema) checkPassword(password string) []Violation {
	if password == "" {
		return []Violation{{Path: constants.FieldPassword, Message: msgPasswordRequired}}
	}
	return Check(constants.FieldPassword, password, s.password)
}

func (s *Schema) checkConfirmation(password, confirm string) []Violation {
	if confirm == "" {
		return []Violation{{Path: constants.FieldConfirmPassword, Message: msgConfirmRequired}}
	}
	if confirm != password {
		return []Violation{{Path: constants.FieldConfirmPassword, Message: msgPasswordMismatch}}
	}
	return nil
}

func (s *Schema) checkImage(f *capture.File, required bool) []Violation {
	if f == nil {
		if required {
			return []Violation{{Path: constants.FieldImage, Message: msgImageRequired}}
		}
		return nil
	}

	out := Check(constants.FieldImage, f, s.image)
	if !s.inspect {
		return out
	}

	info, err := capture.Inspect(f)
	if err != nil {
		return append(out, Violation{Path: constants.FieldImage, Message: msgImageInvalid})
	}
	return append(out, Check(constants.FieldImage, info, s.geometry)...)
}
