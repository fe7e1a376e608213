package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
)

// Leaves room for the timestamp prefix added on relocation
const maxFileNameSize = 200

// AvatarValidator checks an uploaded avatar before it's allowed into the
// staging area. Returns the HTTP status to respond with on failure
func AvatarValidator(fh *multipart.FileHeader) (int, error) {
	if fh == nil {
		return http.StatusBadRequest, ErrNoFile
	}

	// Check headers first which is easy to spoof, but faster for legit clients
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return http.StatusBadRequest, ErrFileTypeUnsupported
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, ErrFileNameTooLong
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return http.StatusRequestEntityTooLarge, ErrFileTooLarge
	}

	// And now sniff the actual content to catch malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, err
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	if !strings.HasPrefix(mime.String(), "image/") {
		return http.StatusBadRequest, ErrFileTypeUnsupported
	}

	return 0, nil
}
