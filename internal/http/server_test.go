package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ChickenCoderzzz/CoachAssist/internal/config"
	"github.com/ChickenCoderzzz/CoachAssist/internal/db"
	"github.com/ChickenCoderzzz/CoachAssist/internal/repository"
)

type fakeMailer struct {
	mu       sync.Mutex
	codes    map[string]string
	failSend bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}}
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return fmt.Errorf("mail service unavailable")
	}
	m.codes[to] = code
	return nil
}

func (m *fakeMailer) SendPasswordResetCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return fmt.Errorf("mail service unavailable")
	}
	m.codes[to] = code
	return nil
}

func (m *fakeMailer) lastCode(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type fakeObjectStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failDelete bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return fmt.Errorf("storage unavailable")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func (f *fakeObjectStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

type fakeClipper struct{}

func (fakeClipper) Clip(_ context.Context, _ string, _, _ float64) (string, error) {
	out, err := os.CreateTemp("", "clip-*.mp4")
	if err != nil {
		return "", err
	}
	if _, err := out.Write([]byte("clip-bytes")); err != nil {
		out.Close()
		return "", err
	}
	out.Close()
	return out.Name(), nil
}

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("COACHASSIST_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("COACHASSIST_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(context.Background(), string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return pool
}

type testApp struct {
	server  *httptest.Server
	mailer  *fakeMailer
	objects *fakeObjectStore
}

func newTestApp(t *testing.T, pool *pgxpool.Pool) *testApp {
	t.Helper()
	cfg := config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		TokenTTL:       time.Hour,
		CodeTTL:        15 * time.Minute,
		PlaybackURLTTL: time.Hour,
		MaxPhotoBytes:  5 << 20,
		MaxVideoBytes:  10 << 20,
	}
	mailer := newFakeMailer()
	objects := newFakeObjectStore()
	server := NewServer(cfg, repository.NewStore(pool), mailer, objects, fakeClipper{}, nil, zerolog.Nop())
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return &testApp{server: app, mailer: mailer, objects: objects}
}

func (a *testApp) url(path string) string {
	return a.server.URL + path
}

func doReq(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func doReqList(t *testing.T, method, url, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	defer resp.Body.Close()
	var decoded []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return resp, decoded
}

// signupAndLogin runs the full staged signup and returns a bearer token.
func signupAndLogin(t *testing.T, app *testApp) (string, string) {
	t.Helper()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	username := "coach" + suffix
	email := "coach" + suffix + "@example.local"

	resp, body := doReq(t, http.MethodPost, app.url("/auth/signup"), "", map[string]string{
		"full_name": "Test Coach",
		"email":     email,
		"username":  username,
		"password":  "dev-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "signup: %v", body)

	code := app.mailer.lastCode(email)
	require.NotEmpty(t, code, "verification code not sent")

	resp, body = doReq(t, http.MethodPost, app.url("/auth/verify-email"), "", map[string]string{"code": code})
	require.Equal(t, http.StatusOK, resp.StatusCode, "verify: %v", body)

	resp, body = doReq(t, http.MethodPost, app.url("/auth/login"), "", map[string]string{
		"username": username,
		"password": "dev-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token, email
}

func createTeam(t *testing.T, app *testApp, token, name string) int64 {
	t.Helper()
	resp, body := doReq(t, http.MethodPost, app.url("/teams"), token, map[string]string{"name": name})
	require.Equal(t, http.StatusOK, resp.StatusCode, "create team: %v", body)
	team := body["team"].(map[string]interface{})
	return int64(team["id"].(float64))
}

func createMatch(t *testing.T, app *testApp, token string, teamID int64, date string) int64 {
	t.Helper()
	resp, body := doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/matches", teamID)), token, map[string]string{
		"name":      "Week 1",
		"opponent":  "Eagles",
		"game_date": date,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "create match: %v", body)
	match := body["match"].(map[string]interface{})
	return int64(match["id"].(float64))
}

func createPlayer(t *testing.T, app *testApp, token string, teamID int64, name string, jersey int) int64 {
	t.Helper()
	resp, body := doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/players", teamID)), token, map[string]interface{}{
		"team_id":       teamID,
		"player_name":   name,
		"jersey_number": jersey,
		"unit":          "offense",
		"position":      "QB",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create player: %v", body)
	return int64(body["id"].(float64))
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, email := signupAndLogin(t, app)

	// The profile reflects the verified account.
	resp, body := doReq(t, http.MethodGet, app.url("/auth/profile"), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, email, body["email"])

	// Signing up again with the same email is rejected.
	resp, body = doReq(t, http.MethodPost, app.url("/auth/signup"), "", map[string]string{
		"full_name": "Imposter",
		"email":     email,
		"username":  "someone-else",
		"password":  "dev-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Username or email already in use", body["error"])

	// Bad credentials and unknown users get the same answer.
	resp, body = doReq(t, http.MethodPost, app.url("/auth/login"), "", map[string]string{
		"username": email,
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid login credentials", body["error"])

	resp, body = doReq(t, http.MethodPost, app.url("/auth/login"), "", map[string]string{
		"username": "no-such-user",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid login credentials", body["error"])

	// A bogus verification code is rejected.
	resp, body = doReq(t, http.MethodPost, app.url("/auth/verify-email"), "", map[string]string{"code": "000000"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid verification code", body["error"])

	// Protected routes require a token.
	resp, _ = doReq(t, http.MethodGet, app.url("/teams"), "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginBeforeVerification(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	username := "pending" + suffix
	resp, _ := doReq(t, http.MethodPost, app.url("/auth/signup"), "", map[string]string{
		"email":    username + "@example.local",
		"username": username,
		"password": "dev-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The staged account does not exist in users yet.
	resp, body := doReq(t, http.MethodPost, app.url("/auth/login"), "", map[string]string{
		"username": username,
		"password": "dev-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid login credentials", body["error"])
}

func TestExpiredCodesRejected(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	// A matching verification code past its expiry is rejected.
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	email := "stale" + suffix + "@example.local"
	resp, _ := doReq(t, http.MethodPost, app.url("/auth/signup"), "", map[string]string{
		"email":    email,
		"username": "stale" + suffix,
		"password": "dev-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code := app.mailer.lastCode(email)
	require.NotEmpty(t, code)
	_, err := pool.Exec(context.Background(),
		`UPDATE pending_users SET verification_expires = now() - interval '1 minute' WHERE email = $1`, email)
	require.NoError(t, err)

	resp, body := doReq(t, http.MethodPost, app.url("/auth/verify-email"), "", map[string]string{"code": code})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Verification code expired", body["error"])

	// Same for a matching reset code past its expiry.
	_, email = signupAndLogin(t, app)
	resp, _ = doReq(t, http.MethodPost, app.url("/auth/forgot-password/request"), "", map[string]string{
		"email": email,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	code = app.mailer.lastCode(email)
	require.NotEmpty(t, code)
	_, err = pool.Exec(context.Background(),
		`UPDATE users SET password_reset_expires = now() - interval '1 minute' WHERE email = $1`, email)
	require.NoError(t, err)

	resp, body = doReq(t, http.MethodPost, app.url("/auth/forgot-password/verify"), "", map[string]string{
		"email":        email,
		"code":         code,
		"new_password": "new-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Reset code expired", body["error"])
}

func TestSignupSendFailureLeavesNoStagedRow(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	email := "undelivered" + suffix + "@example.local"
	app.mailer.failSend = true
	resp, body := doReq(t, http.MethodPost, app.url("/auth/signup"), "", map[string]string{
		"email":    email,
		"username": "undelivered" + suffix,
		"password": "dev-password",
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Failed to send verification email", body["error"])

	// The address reads as never signed up.
	app.mailer.failSend = false
	resp, body = doReq(t, http.MethodPost, app.url("/auth/resend-verification"), "", map[string]string{
		"email": email,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Email not found. Please sign up.", body["error"])
}

func TestPasswordResetFlow(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	_, email := signupAndLogin(t, app)

	// Unknown emails get the same generic answer as known ones.
	resp, body := doReq(t, http.MethodPost, app.url("/auth/forgot-password/request"), "", map[string]string{
		"email": "nobody@example.local",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	generic := body["message"]

	resp, body = doReq(t, http.MethodPost, app.url("/auth/forgot-password/request"), "", map[string]string{
		"email": email,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, generic, body["message"])

	code := app.mailer.lastCode(email)
	require.NotEmpty(t, code)

	resp, body = doReq(t, http.MethodPost, app.url("/auth/forgot-password/verify"), "", map[string]string{
		"email":        email,
		"code":         "999999",
		"new_password": "new-password",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid reset code", body["error"])

	resp, body = doReq(t, http.MethodPost, app.url("/auth/forgot-password/verify"), "", map[string]string{
		"email":        email,
		"code":         code,
		"new_password": "new-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Password reset successful", body["message"])

	resp, body = doReq(t, http.MethodPost, app.url("/auth/login"), "", map[string]string{
		"username": email,
		"password": "new-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["token"])
}

func TestTeamAndMatchLifecycle(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	otherToken, _ := signupAndLogin(t, app)

	teamID := createTeam(t, app, token, "Varsity")

	resp, body := doReq(t, http.MethodPut, app.url(fmt.Sprintf("/teams/%d", teamID)), token, map[string]string{
		"name":  "Varsity Gold",
		"color": "#FFD700",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Varsity Gold", body["team"].(map[string]interface{})["name"])

	// Photos have their own endpoints; image_url is not an update field.
	resp, body = doReq(t, http.MethodPut, app.url(fmt.Sprintf("/teams/%d", teamID)), token, map[string]string{
		"name":      "Varsity Gold",
		"image_url": "https://cdn.example/sneaky.png",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid request body", body["error"])

	// Another account cannot see or touch the team.
	resp, body = doReq(t, http.MethodGet, app.url(fmt.Sprintf("/teams/%d", teamID)), otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Team not found", body["error"])

	matchID := createMatch(t, app, token, teamID, "2025-09-05")

	// One game per team per date.
	resp, body = doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/matches", teamID)), token, map[string]string{
		"name":      "Week 1 again",
		"opponent":  "Hawks",
		"game_date": "2025-09-05",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "A game already exists for this date.", body["error"])

	// Moving the match to a free date is fine; re-saving with the same date too.
	resp, _ = doReq(t, http.MethodPut, app.url(fmt.Sprintf("/teams/matches/%d", matchID)), token, map[string]interface{}{
		"name":       "Week 1",
		"opponent":   "Eagles",
		"game_date":  "2025-09-05",
		"team_score": 21,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doReq(t, http.MethodGet, app.url(fmt.Sprintf("/teams/matches/%d", matchID)), otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Match not found", body["error"])

	resp, body = doReq(t, http.MethodDelete, app.url(fmt.Sprintf("/teams/matches/%d", matchID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Match deleted", body["message"])

	resp, body = doReq(t, http.MethodDelete, app.url(fmt.Sprintf("/teams/%d", teamID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Team deleted", body["message"])
}

func TestPlayerRosterRules(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	otherToken, _ := signupAndLogin(t, app)

	teamID := createTeam(t, app, token, "Varsity")
	playerID := createPlayer(t, app, token, teamID, "Sam Quarter", 12)

	// Duplicate jersey numbers are rejected.
	resp, body := doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/players", teamID)), token, map[string]interface{}{
		"team_id":       teamID,
		"player_name":   "Backup",
		"jersey_number": 12,
		"unit":          "offense",
		"position":      "RB",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Player already exists or invalid data", body["error"])

	// Path and body team ids must agree.
	resp, body = doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/players", teamID)), token, map[string]interface{}{
		"team_id":       teamID + 1,
		"player_name":   "Stray",
		"jersey_number": 99,
		"unit":          "defense",
		"position":      "CB",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Team ID mismatch", body["error"])

	// Unit filter only returns matching players.
	secondID := createPlayer(t, app, token, teamID, "Kick Specialist", 3)
	resp, list := doReqList(t, http.MethodGet, app.url(fmt.Sprintf("/teams/%d/players?unit=offense", teamID)), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 2)

	resp, body = doReq(t, http.MethodPut, app.url(fmt.Sprintf("/teams/players/%d", playerID)), token, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "No fields provided for update", body["error"])

	resp, body = doReq(t, http.MethodPut, app.url(fmt.Sprintf("/teams/players/%d", playerID)), token, map[string]interface{}{
		"jersey_number": 7,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, float64(7), body["jersey_number"])

	// Updating onto a taken jersey number fails.
	resp, body = doReq(t, http.MethodPut, app.url(fmt.Sprintf("/teams/players/%d", secondID)), token, map[string]interface{}{
		"jersey_number": 7,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Update failed (possible jersey number conflict)", body["error"])

	// Other accounts cannot reach the player.
	resp, body = doReq(t, http.MethodGet, app.url(fmt.Sprintf("/teams/players/%d", playerID)), otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Player not found or access denied", body["error"])

	resp, body = doReq(t, http.MethodDelete, app.url(fmt.Sprintf("/teams/players/%d", playerID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
}

func TestInsightsReplaceAll(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	otherToken, _ := signupAndLogin(t, app)

	teamID := createTeam(t, app, token, "Varsity")
	gameID := createMatch(t, app, token, teamID, "2025-09-05")
	playerID := createPlayer(t, app, token, teamID, "Sam Quarter", 12)

	insightsURL := app.url(fmt.Sprintf("/games/%d/players/%d", gameID, playerID))

	// Empty insights read back as no stats and no notes.
	resp, body := doReq(t, http.MethodGet, insightsURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["stats"])
	require.Empty(t, body["notes"])

	resp, body = doReq(t, http.MethodPut, insightsURL, token, map[string]interface{}{
		"stats": map[string]interface{}{"passing_yards": 250, "passing_tds": 3},
		"notes": []map[string]interface{}{
			{"category": "Passing", "note": "Great deep ball", "time": "Q2 04:12"},
			{"note": "Held onto the ball too long"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Player insights updated successfully", body["message"])

	resp, body = doReq(t, http.MethodGet, insightsURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := body["stats"].(map[string]interface{})
	require.Equal(t, float64(250), stats["passing_yards"])
	notes := body["notes"].([]interface{})
	require.Len(t, notes, 2)
	require.Equal(t, "General", notes[1].(map[string]interface{})["category"])

	// A second submit replaces everything from the first.
	resp, _ = doReq(t, http.MethodPut, insightsURL, token, map[string]interface{}{
		"stats": map[string]interface{}{"passing_yards": 310},
		"notes": []map[string]interface{}{
			{"category": "Passing", "note": "Corrected total after film review"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doReq(t, http.MethodGet, insightsURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats = body["stats"].(map[string]interface{})
	require.Equal(t, float64(310), stats["passing_yards"])
	require.Nil(t, stats["passing_tds"])
	require.Len(t, body["notes"].([]interface{}), 1)

	// Submitting no stats clears the stats row.
	resp, _ = doReq(t, http.MethodPut, insightsURL, token, map[string]interface{}{
		"stats": map[string]interface{}{},
		"notes": []map[string]interface{}{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doReq(t, http.MethodGet, insightsURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["stats"])

	// Other accounts are denied at the game boundary.
	resp, body = doReq(t, http.MethodGet, insightsURL, otherToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Access denied to this game", body["error"])
}

func TestGameStateReplaceAll(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	otherToken, _ := signupAndLogin(t, app)

	teamID := createTeam(t, app, token, "Varsity")
	gameID := createMatch(t, app, token, teamID, "2025-09-05")
	stateURL := app.url(fmt.Sprintf("/games/%d/state", gameID))

	// All four categories come back, empty, before any writes.
	resp, body := doReq(t, http.MethodGet, stateURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, category := range []string{"Game State", "Offensive", "Defensive", "Special"} {
		entries, ok := body[category].([]interface{})
		require.True(t, ok, "missing category %s", category)
		require.Empty(t, entries)
	}

	resp, body = doReq(t, http.MethodPut, stateURL, token, map[string]interface{}{
		"Offensive": []map[string]interface{}{
			{"text": "Run heavy on first down", "time": "Q1"},
		},
		"Defensive": []map[string]interface{}{
			{"text": "Blitzing on third and long", "time": "Q2"},
			{"text": "Soft zone coverage", "time": "Q3"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Game state updated successfully", body["message"])

	resp, body = doReq(t, http.MethodGet, stateURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["Offensive"].([]interface{}), 1)
	require.Len(t, body["Defensive"].([]interface{}), 2)
	require.Empty(t, body["Special"].([]interface{}))

	// Replace-all drops the categories left out of the next submit.
	resp, _ = doReq(t, http.MethodPut, stateURL, token, map[string]interface{}{
		"Special": []map[string]interface{}{
			{"text": "Long snapper struggling", "time": "Q4"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doReq(t, http.MethodGet, stateURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["Offensive"].([]interface{}))
	require.Len(t, body["Special"].([]interface{}), 1)

	resp, body = doReq(t, http.MethodPut, stateURL, otherToken, map[string]interface{}{})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Access denied to this game", body["error"])
}

func uploadMultipart(t *testing.T, url, token, filename, contentType string, content []byte) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestVideoLifecycle(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	otherToken, _ := signupAndLogin(t, app)

	teamID := createTeam(t, app, token, "Varsity")
	matchID := createMatch(t, app, token, teamID, "2025-09-05")
	videosURL := app.url(fmt.Sprintf("/teams/%d/matches/%d/videos", teamID, matchID))

	// Register a YouTube link.
	resp, body := doReq(t, http.MethodPost, videosURL+"/youtube", token, map[string]string{
		"youtube_id": "https://youtu.be/dQw4w9WgXcQ",
		"filename":   "Scrimmage",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "register youtube: %v", body)
	require.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", body["playback_url"])

	resp, body = doReq(t, http.MethodPost, videosURL+"/youtube", token, map[string]string{
		"youtube_id": "not a video",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid YouTube URL or ID", body["error"])

	// Upload game film.
	resp, body = uploadMultipart(t, videosURL, token, "week1.mp4", "video/mp4", []byte("film-bytes"))
	require.Equal(t, http.StatusOK, resp.StatusCode, "upload: %v", body)
	uploadID := int64(body["id"].(float64))

	resp, list := doReqList(t, http.MethodGet, videosURL, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 2)
	for _, item := range list {
		require.NotEmpty(t, item["playback_url"], "video %v has no playback url", item["id"])
	}

	// Clip the uploaded film into a new video.
	resp, body = doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/matches/%d/videos/%d/clip", teamID, matchID, uploadID)), token, map[string]interface{}{
		"start": 30.0,
		"end":   45.5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "clip: %v", body)
	require.Equal(t, "Clip of week1.mp4", body["filename"])

	resp, body = doReq(t, http.MethodPost, app.url(fmt.Sprintf("/teams/%d/matches/%d/videos/%d/clip", teamID, matchID, uploadID)), token, map[string]interface{}{
		"start": 45.0,
		"end":   30.0,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Another account cannot reach the match's videos.
	resp, body = doReq(t, http.MethodGet, videosURL, otherToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Match not found or unauthorized", body["error"])

	// Deleting survives a failing blob delete; the row still goes.
	app.objects.failDelete = true
	resp, body = doReq(t, http.MethodDelete, app.url(fmt.Sprintf("/teams/%d/matches/%d/videos/%d", teamID, matchID, uploadID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Video deleted successfully", body["message"])

	resp, list = doReqList(t, http.MethodGet, videosURL, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 2)
}

func TestTeamPhotoUpload(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	teamID := createTeam(t, app, token, "Varsity")
	photoURL := app.url(fmt.Sprintf("/teams/%d/photo", teamID))

	resp, body := uploadMultipartPut(t, photoURL, token, "logo.png", "image/png", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, resp.StatusCode, "photo upload: %v", body)
	imageURL, _ := body["image_url"].(string)
	require.Contains(t, imageURL, "team_photos/")

	resp, body = doReq(t, http.MethodGet, app.url(fmt.Sprintf("/teams/%d", teamID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, imageURL, body["team"].(map[string]interface{})["image_url"])

	resp, body = uploadMultipartPut(t, photoURL, token, "notes.txt", "text/plain", []byte("nope"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Unsupported image type", body["error"])

	resp, body = doReq(t, http.MethodDelete, photoURL, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Team photo deleted", body["message"])

	resp, body = doReq(t, http.MethodGet, app.url(fmt.Sprintf("/teams/%d", teamID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, body["team"].(map[string]interface{})["image_url"])
}

func uploadMultipartPut(t *testing.T, url, token, filename, contentType string, content []byte) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPut, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestPlayerHistory(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	teamID := createTeam(t, app, token, "Varsity")
	gameID := createMatch(t, app, token, teamID, "2025-09-05")
	playerID := createPlayer(t, app, token, teamID, "Sam Quarter", 12)

	resp, _ := doReq(t, http.MethodPut, app.url(fmt.Sprintf("/games/%d/players/%d", gameID, playerID)), token, map[string]interface{}{
		"stats": map[string]interface{}{"passing_yards": 250},
		"notes": []map[string]interface{}{
			{"category": "Passing", "note": "Great deep ball"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doReq(t, http.MethodGet, app.url(fmt.Sprintf("/players/%d/history", playerID)), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	games := body["games"].([]interface{})
	require.Len(t, games, 1)
	require.Equal(t, "2025-09-05", games[0].(map[string]interface{})["game_date"])

	stats := body["stats_by_game"].([]interface{})
	require.Len(t, stats, 1)
	require.Equal(t, float64(250), stats[0].(map[string]interface{})["passing_yards"])

	notes := body["notes"].([]interface{})
	require.Len(t, notes, 1)
	note := notes[0].(map[string]interface{})
	require.Equal(t, "Eagles", note["opponent"])
	require.Equal(t, "2025-09-05", note["game_date"])
}

func TestDeleteAccountCascades(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()
	app := newTestApp(t, pool)

	token, _ := signupAndLogin(t, app)
	teamID := createTeam(t, app, token, "Varsity")
	createMatch(t, app, token, teamID, "2025-09-05")

	resp, body := doReq(t, http.MethodPost, app.url("/auth/delete-account"), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Account deleted successfully", body["message"])

	// The token no longer authorizes anything.
	resp, body = doReq(t, http.MethodGet, app.url("/teams"), token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "User not found", body["error"])
}
