package api

import (
	"net/http"
	"testing"
	"time"

	"kvert/account-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserVerifyConsume(t *testing.T) {
	d, _, router := setupTest(t)
	user := seedUser(t, d, "a@x.com", "Secret123", false)

	w := doJSON(t, router, http.MethodGet, "/api/users/verify/"+user.VerificationToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verification successful", decodeBody(t, w)["message"])

	var stored model.User
	require.NoError(t, d.DB.Where("id = ?", user.ID).First(&stored).Error)
	assert.True(t, stored.Verified)

	// Second click on the same link: single-use
	w = doJSON(t, router, http.MethodGet, "/api/users/verify/"+user.VerificationToken, nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Verification has already been passed", decodeBody(t, w)["message"])
}

func TestUserVerifyUnknownToken(t *testing.T) {
	_, _, router := setupTest(t)

	w := doJSON(t, router, http.MethodGet, "/api/users/verify/deadbeef", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeBody(t, w)["message"])
}

func TestUserVerifyResend(t *testing.T) {
	d, mailer, router := setupTest(t)
	user := seedUser(t, d, "a@x.com", "Secret123", false)

	w := doJSON(t, router, http.MethodPost, "/api/users/verify", map[string]string{
		"email": "a@x.com",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verification email sent", decodeBody(t, w)["message"])

	// Token is rotated on every resend
	var stored model.User
	require.NoError(t, d.DB.Where("id = ?", user.ID).First(&stored).Error)
	assert.NotEmpty(t, stored.VerificationToken)
	assert.NotEqual(t, user.VerificationToken, stored.VerificationToken)

	require.Eventually(t, func() bool {
		return mailer.sentCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, stored.VerificationToken, mailer.lastSent().Token)

	// The old mailed link is dead after the rotation
	w = doJSON(t, router, http.MethodGet, "/api/users/verify/"+user.VerificationToken, nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserVerifyResendAlreadyVerified(t *testing.T) {
	d, mailer, router := setupTest(t)
	seedUser(t, d, "a@x.com", "Secret123", true)

	w := doJSON(t, router, http.MethodPost, "/api/users/verify", map[string]string{
		"email": "a@x.com",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Verification has already been passed", decodeBody(t, w)["message"])
	assert.Zero(t, mailer.sentCount())
}

func TestUserVerifyResendValidation(t *testing.T) {
	_, _, router := setupTest(t)

	w := doJSON(t, router, http.MethodPost, "/api/users/verify", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing required field email", decodeBody(t, w)["message"])

	w = doJSON(t, router, http.MethodPost, "/api/users/verify", map[string]string{
		"email": "nobody@x.com",
	}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
