package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/teris-io/shortid"
)

const attachmentFormField = "archivo"

// maxAttachmentSize bounds the in-memory part of multipart parsing.
const maxAttachmentSize = 32 << 20

var errUnsupportedFileType = errors.New("unsupported file type")

var allowedExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".mp4":  {},
}

// saveAttachment stores the uploaded file under the uploads dir with a
// generated name and returns that name. The stored value is the filename
// only; the uploads base path is joined by the static file server.
// Returns empty string when the request carries no attachment.
func (s *NutriChatApp) saveAttachment(r *http.Request) (string, error) {
	file, header, err := r.FormFile(attachmentFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", errUnsupportedFileType
	}

	sid, err := shortid.Generate()
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	name := sid + ext

	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return name, nil
}
