package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"elimufund.com/backend/internal/bootstrap"
	"elimufund.com/backend/internal/config"
	"elimufund.com/backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	_, err := bootstrap.SeedAdminUser(context.Background(), db, testutil.Hasher, bootstrap.AdminSeed{
		Email:    "admin@elimufund.com",
		Username: "admin",
		Password: "admin-password",
	})
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:           "test",
		AllowedOrigins:   "http://localhost:5173",
		SessionSecret:    "test-secret",
		SessionName:      "elimufund_session",
		SessionTTL:       time.Hour,
		AllowOverfunding: true,
		CancelWindow:     24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
	}

	srv, err := NewServer(cfg, db, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func (c *client) signup(name, email, userType string) {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/api/signup", map[string]any{
		"fullName": name,
		"email":    email,
		"userType": userType,
		"password": "password123",
	})
	require.Equal(c.t, http.StatusCreated, status, body)
}

func field(t *testing.T, body map[string]any, keys ...string) any {
	t.Helper()
	var cur any = body
	for _, k := range keys {
		m, ok := cur.(map[string]any)
		require.True(t, ok, "expected object at %q in %v", k, body)
		cur = m[k]
	}
	return cur
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, body := newClient(t, ts).do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestDonationJourney(t *testing.T) {
	ts := newTestServer(t)
	student := newClient(t, ts)
	donor := newClient(t, ts)
	admin := newClient(t, ts)
	visitor := newClient(t, ts)

	student.signup("Amina Njeri", "amina@example.com", "student")
	status, body := student.do(http.MethodPost, "/api/student-profiles", map[string]any{
		"full_name":      "Amina Njeri",
		"academic_level": "Form 4",
		"school_name":    "Alliance Girls",
		"fee_amount":     1000,
		"story":          testutil.Story(),
	})
	require.Equal(t, http.StatusCreated, status, body)
	profileID := uint(field(t, body, "profile", "id").(float64))
	path := fmt.Sprintf("/api/students/%d", profileID)

	status, body = visitor.do(http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])

	donor.signup("Kind Donor", "donor@example.com", "donor")
	status, _ = donor.do(http.MethodPost, "/api/donations", map[string]any{"student_id": profileID, "amount": 600})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = admin.do(http.MethodPost, "/api/login", map[string]any{"email": "admin@elimufund.com", "password": "admin-password"})
	require.Equal(t, http.StatusOK, status)
	status, body = admin.do(http.MethodPatch, fmt.Sprintf("/api/admin/students/%d/verify", profileID), nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, field(t, body, "student", "is_verified"))

	status, body = donor.do(http.MethodPost, "/api/donations", map[string]any{"student_id": profileID, "amount": 600, "message": "Keep going"})
	require.Equal(t, http.StatusCreated, status, body)
	donationID := uint(field(t, body, "donation", "id").(float64))

	status, body = visitor.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 600, body["amount_raised"])
	assert.EqualValues(t, 1, body["total_donors"])

	status, body = donor.do(http.MethodPost, path+"/follow", nil)
	require.Equal(t, http.StatusOK, status, body)
	status, body = donor.do(http.MethodGet, path+"/following-status", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_following"])

	status, body = student.do(http.MethodPost, "/api/donations", map[string]any{"student_id": profileID, "amount": 10})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Donor access required", body["error"])

	status, body = donor.do(http.MethodGet, "/api/donations", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 600, body["total_donated"])
	assert.EqualValues(t, 1, body["students_supported"])

	status, _ = donor.do(http.MethodDelete, fmt.Sprintf("/api/donations/%d", donationID), nil)
	require.Equal(t, http.StatusOK, status)

	status, body = visitor.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["amount_raised"])

	status, body = admin.do(http.MethodGet, "/api/admin/ledger/reconcile", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["drifted"])
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	donor := newClient(t, ts)

	status, body := donor.do(http.MethodGet, "/api/check-session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["authenticated"])

	donor.signup("Kind Donor", "donor@example.com", "donor")

	status, body = donor.do(http.MethodGet, "/api/check-session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "donor", field(t, body, "user", "role"))
	assert.Nil(t, field(t, body, "user", "password_hash"))

	status, _ = donor.do(http.MethodDelete, "/api/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = donor.do(http.MethodGet, "/api/check-session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = donor.do(http.MethodPost, "/api/login", map[string]any{"email": "donor@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = donor.do(http.MethodPost, "/api/login", map[string]any{"email": "DONOR@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, status)
}

func TestRoleGuards(t *testing.T) {
	ts := newTestServer(t)
	visitor := newClient(t, ts)
	donor := newClient(t, ts)
	donor.signup("Kind Donor", "donor@example.com", "donor")

	status, body := visitor.do(http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication required", body["error"])

	status, body = donor.do(http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Admin access required", body["error"])

	status, body = donor.do(http.MethodGet, "/api/my-profile", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Student access required", body["error"])

	status, _ = visitor.do(http.MethodGet, "/api/students/abc", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = visitor.do(http.MethodPost, "/api/signup", map[string]any{
		"fullName": "Sneaky",
		"email":    "sneaky@example.com",
		"userType": "admin",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTotalDonorsCountsDistinctDonors(t *testing.T) {
	ts := newTestServer(t)
	student := newClient(t, ts)
	donor := newClient(t, ts)
	other := newClient(t, ts)
	admin := newClient(t, ts)

	student.signup("Amina Njeri", "amina@example.com", "student")
	status, body := student.do(http.MethodPost, "/api/student-profiles", map[string]any{
		"full_name":      "Amina Njeri",
		"academic_level": "Form 4",
		"school_name":    "Alliance Girls",
		"fee_amount":     1000,
		"story":          testutil.Story(),
	})
	require.Equal(t, http.StatusCreated, status, body)
	profileID := uint(field(t, body, "profile", "id").(float64))

	status, _ = admin.do(http.MethodPost, "/api/login", map[string]any{"email": "admin@elimufund.com", "password": "admin-password"})
	require.Equal(t, http.StatusOK, status)
	status, _ = admin.do(http.MethodPatch, fmt.Sprintf("/api/admin/students/%d/verify", profileID), nil)
	require.Equal(t, http.StatusOK, status)

	donor.signup("Kind Donor", "donor@example.com", "donor")
	other.signup("Other Donor", "other@example.com", "donor")
	for _, amount := range []float64{100, 50, 25} {
		status, body = donor.do(http.MethodPost, "/api/donations", map[string]any{"student_id": profileID, "amount": amount})
		require.Equal(t, http.StatusCreated, status, body)
	}
	status, body = other.do(http.MethodPost, "/api/donations", map[string]any{"student_id": profileID, "amount": 10})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = other.do(http.MethodGet, fmt.Sprintf("/api/students/%d", profileID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 185, body["amount_raised"])
	assert.EqualValues(t, 2, body["total_donors"])
}

func TestDuplicatesReturnConflict(t *testing.T) {
	ts := newTestServer(t)
	student := newClient(t, ts)
	student.signup("Amina Njeri", "amina@example.com", "student")

	status, _ := newClient(t, ts).do(http.MethodPost, "/api/signup", map[string]any{
		"fullName": "Someone Else",
		"email":    "Amina@Example.com",
		"userType": "donor",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	profile := map[string]any{
		"full_name":      "Amina Njeri",
		"academic_level": "Form 4",
		"school_name":    "Alliance Girls",
		"fee_amount":     1000,
		"story":          testutil.Story(),
	}
	status, body := student.do(http.MethodPost, "/api/student-profiles", profile)
	require.Equal(t, http.StatusCreated, status, body)
	status, _ = student.do(http.MethodPost, "/api/student-profiles", profile)
	assert.Equal(t, http.StatusConflict, status)
}
