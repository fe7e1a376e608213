package validators

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("a@x.com"))
	assert.NoError(t, EmailValidator("first.last+tag@sub.example.org"))

	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("a@"), ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("Secret123"))

	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 256)), ErrPasswordTooLong)
}

// makeFileHeader builds a real multipart.FileHeader by writing and
// re-parsing a form, there's no public constructor for it
func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="avatar"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&body, mw.Boundary())
	form, err := reader.ReadForm(10 << 20)
	require.NoError(t, err)

	return form.File["avatar"][0]
}

func pngContent(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}

func TestAvatarValidator(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	t.Run("accepts png", func(t *testing.T) {
		fh := makeFileHeader(t, "me.png", "image/png", pngContent(t))

		status, err := AvatarValidator(fh)
		require.NoError(t, err)
		assert.Zero(t, status)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		status, err := AvatarValidator(nil)
		assert.ErrorIs(t, err, ErrNoFile)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rejects declared non-image", func(t *testing.T) {
		fh := makeFileHeader(t, "notes.txt", "text/plain", []byte("hello"))

		status, err := AvatarValidator(fh)
		assert.ErrorIs(t, err, ErrFileTypeUnsupported)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("sniffs content behind a spoofed header", func(t *testing.T) {
		fh := makeFileHeader(t, "fake.png", "image/png", []byte("plain text pretending"))

		status, err := AvatarValidator(fh)
		assert.ErrorIs(t, err, ErrFileTypeUnsupported)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		viper.Set("upload.max_size", int64(8))
		defer viper.Set("upload.max_size", int64(1<<20))

		fh := makeFileHeader(t, "me.png", "image/png", pngContent(t))

		status, err := AvatarValidator(fh)
		assert.ErrorIs(t, err, ErrFileTooLarge)
		assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	})

	t.Run("rejects absurd file name", func(t *testing.T) {
		fh := makeFileHeader(t, strings.Repeat("a", 201)+".png", "image/png", pngContent(t))

		status, err := AvatarValidator(fh)
		assert.ErrorIs(t, err, ErrFileNameTooLong)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
