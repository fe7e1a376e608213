package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"kvert/account-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegister(t *testing.T) {
	d, mailer, router := setupTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/users/signup", map[string]string{
		"email":    "a@x.com",
		"password": "Secret123",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.NotEmpty(t, user["verificationToken"])

	var stored model.User
	require.NoError(t, d.DB.Where("email = ?", "a@x.com").First(&stored).Error)

	assert.False(t, stored.Verified)
	assert.NotEqual(t, "Secret123", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.AvatarURL, "https://www.gravatar.com/avatar/"))
	assert.Equal(t, user["verificationToken"], stored.VerificationToken)

	// Mail goes out in the background, after the response
	require.Eventually(t, func() bool {
		return mailer.sentCount() == 1
	}, time.Second, 10*time.Millisecond)

	sent := mailer.lastSent()
	assert.Equal(t, "a@x.com", sent.To)
	assert.Equal(t, stored.VerificationToken, sent.Token)
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	d, _, router := setupTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/users/signup", map[string]string{
		"email":    "a@x.com",
		"password": "Secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/users/signup", map[string]string{
		"email":    "a@x.com",
		"password": "Different456",
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Email is already in use", body["message"])

	var count int64
	require.NoError(t, d.DB.Model(model.User{}).Where("email = ?", "a@x.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserRegisterValidation(t *testing.T) {
	_, mailer, router := setupTest(t)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"malformed email", "not-an-email", "Secret123"},
		{"empty email", "", "Secret123"},
		{"short password", "b@x.com", "short"},
		{"empty password", "b@x.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/users/signup", map[string]string{
				"email":    tc.email,
				"password": tc.password,
			}, nil)

			require.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, "error", body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}

	// Nothing was valid, nothing should have been mailed
	assert.Zero(t, mailer.sentCount())
}
