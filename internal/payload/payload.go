// Package payload turns accepted form input into request bodies.
package payload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"slices"

	"github.com/gorilla/schema"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/validation"
)

// ErrNotAccepted is returned when a payload is requested for input that
// failed validation.
var ErrNotAccepted = errors.New("input was not accepted by validation")

// Format selects the request body encoding.
type Format string

const (
	FormatJSON      Format = "json"
	FormatMultipart Format = "multipart"
)

type registrationForm struct {
	Email           string `schema:"email"`
	Password        string `schema:"password"`
	ConfirmPassword string `schema:"confirmPassword"`
}

type loginForm struct {
	Email    string `schema:"email"`
	Password string `schema:"password,omitempty"`
}

type refreshForm struct {
	RefreshToken string `schema:"refreshToken"`
}

var encoder = schema.NewEncoder()

// Payload is a validated, submittable request body.
type Payload struct {
	Fields url.Values
	Image  *capture.File
}

// Registration builds the registration body from an accepted result.
func Registration(r validation.Result[validation.RegistrationInput]) (*Payload, error) {
	if !r.Accepted() {
		return nil, ErrNotAccepted
	}
	in := r.Value
	return build(&registrationForm{
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}, in.Image)
}

// Login builds the login body from an accepted result. Absent optional
// fields are left out.
func Login(r validation.Result[validation.LoginInput]) (*Payload, error) {
	if !r.Accepted() {
		return nil, ErrNotAccepted
	}
	in := r.Value
	form := &loginForm{Email: in.Email}
	if in.Password != nil {
		form.Password = *in.Password
	}
	return build(form, in.Image)
}

// Refresh builds the token refresh body.
func Refresh(refreshToken string) (*Payload, error) {
	return build(&refreshForm{RefreshToken: refreshToken}, nil)
}

func build(form any, image *capture.File) (*Payload, error) {
	fields := url.Values{}
	if err := encoder.Encode(form, fields); err != nil {
		return nil, fmt.Errorf("could not encode form fields: %w", err)
	}
	return &Payload{Fields: fields, Image: image}, nil
}

// JSON returns the body as a JSON object. The image, when present, is sent
// as a base64 data URL under imageData.
func (p *Payload) JSON() ([]byte, error) {
	obj := make(map[string]string, len(p.Fields)+1)
	for k := range p.Fields {
		obj[k] = p.Fields.Get(k)
	}
	if p.Image != nil {
		obj[constants.FieldImage] = capture.EncodeDataURL(p.Image)
	}

	body, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("could not marshal payload: %w", err)
	}
	return body, nil
}

// Multipart returns the body as multipart/form-data along with its content
// type. The image is attached as a file part named imageData.
func (p *Payload) Multipart() ([]byte, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, k := range p.sortedKeys() {
		for _, v := range p.Fields[k] {
			if err := writer.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("could not write field %s: %w", k, err)
			}
		}
	}

	if p.Image != nil {
		part, err := writer.CreatePart(imageHeader(p.Image))
		if err != nil {
			return nil, "", fmt.Errorf("could not create form file: %w", err)
		}
		if _, err := part.Write(p.Image.Data); err != nil {
			return nil, "", fmt.Errorf("could not copy file data: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("could not close writer: %w", err)
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}

// Encode returns the body in the requested format with its content type.
func (p *Payload) Encode(format Format) ([]byte, string, error) {
	if format == FormatJSON {
		body, err := p.JSON()
		return body, "application/json", err
	}
	return p.Multipart()
}

// Key is a stable digest of the payload content. Two payloads with the same
// fields and image bytes have the same key.
func (p *Payload) Key() string {
	h := sha256.New()
	for _, k := range p.sortedKeys() {
		for _, v := range p.Fields[k] {
			fmt.Fprintf(h, "%s=%q;", k, v)
		}
	}
	if p.Image != nil {
		fmt.Fprintf(h, "%s:%s:", p.Image.MIMEType, p.Image.Name)
		h.Write(p.Image.Data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (p *Payload) sortedKeys() []string {
	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
