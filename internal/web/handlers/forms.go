package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/constants"
)

// credentialsForm is the register/login body in either encoding.
// Absent fields stay nil so login can tell "no password" from "empty password".
type credentialsForm struct {
	Email           string  `schema:"email" json:"email"`
	Password        *string `schema:"-" json:"password"`
	ConfirmPassword string  `schema:"confirmPassword" json:"confirmPassword"`
	ImageData       string  `schema:"-" json:"imageData"`
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// parseCredentials reads a JSON or multipart/form-data body. The image may
// arrive as a file part or, in JSON, as a base64 data URL; either way its
// MIME type is sniffed from the bytes.
func parseCredentials(r *http.Request) (*credentialsForm, *capture.File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		form  credentialsForm
		image *capture.File
		err   error
	)
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
			return nil, nil, fmt.Errorf("parse multipart form: %w", err)
		}
		if err := decoder.Decode(&form, r.MultipartForm.Value); err != nil {
			return nil, nil, fmt.Errorf("decode form: %w", err)
		}
		// The decoder skips empty values, but an empty password is not an absent one.
		if vals := r.MultipartForm.Value["password"]; len(vals) > 0 {
			form.Password = &vals[len(vals)-1]
		}
		if image, err = formImage(r); err != nil {
			return nil, nil, err
		}

	case "application/json", "":
		body := io.LimitReader(r.Body, constants.MaxUploadSize)
		if err := json.NewDecoder(body).Decode(&form); err != nil {
			return nil, nil, fmt.Errorf("decode JSON: %w", err)
		}
		if form.ImageData != "" {
			if image, err = capture.DecodeDataURL(form.ImageData); err != nil {
				return nil, nil, err
			}
			image.MIMEType = http.DetectContentType(image.Data)
		}

	default:
		return nil, nil, fmt.Errorf("unsupported content type %q", mediaType)
	}

	return &form, image, nil
}

func formImage(r *http.Request) (*capture.File, error) {
	for _, field := range []string{constants.FieldImage, "image_data"} {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}

		file, err := headers[0].Open()
		if err != nil {
			return nil, fmt.Errorf("open uploaded file: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read uploaded file: %w", err)
		}
		return &capture.File{
			Name:     headers[0].Filename,
			MIMEType: http.DetectContentType(data),
			Data:     data,
		}, nil
	}
	return nil, nil
}
