package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/internal/models"
	"github.com/openboard/backend/pkg/config"
	"github.com/openboard/backend/validators"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		AccessTokenSecret:  "access-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenTTL:    time.Hour,
	}
}

func jsonContext(t *testing.T, e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func formContext(t *testing.T, e *echo.Echo, method, target string, fields map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func formContextWithFile(t *testing.T, e *echo.Echo, method, target string, fields map[string]string, fileField, fileName string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	part, err := w.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser attaches access claims the way the auth middleware would.
func asUser(c echo.Context, user *models.User) {
	c.Set("user", &models.AccessClaims{
		UserID:   user.ID.Hex(),
		Email:    user.Email,
		UserName: user.UserName,
	})
}

func seedUser(t *testing.T, repo *fakeUserRepo, userName, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		UserName: userName,
		Email:    email,
		Password: string(hash),
		Avatar:   models.DefaultAvatarURL,
		IsActive: true,
	}
	require.NoError(t, repo.CreateUser(nil, user))
	return user
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.Response {
	t.Helper()
	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func dataMap(t *testing.T, resp models.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "expected data to be an object")
	return data
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	return he
}
