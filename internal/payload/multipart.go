package payload

import (
	"fmt"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/constants"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// imageHeader is the part header for the image file. Unlike
// multipart.Writer.CreateFormFile it keeps the file's own content type.
func imageHeader(f *capture.File) textproto.MIMEHeader {
	name := f.Name
	if name == "" {
		name = constants.CaptureFileName
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		constants.FieldImage, quoteEscaper.Replace(name)))
	h.Set("Content-Type", f.MIMEType)
	return h
}
