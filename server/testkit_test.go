package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillswap/config"
	"skillswap/database"
	"skillswap/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer wires a server over a fresh in-memory database. Redis is nil;
// caching and rate limits fail open.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serializes transactions.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret: "test-secret-key",
		AppEnv:    "test",
	}
	srv := New(cfg, db, nil)

	app := fiber.New()
	srv.SetupRoutes(app)

	return srv, app, db
}

func jsonRequest(t *testing.T, method, path string, body any, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// doJSON runs the request and decodes the response body into dest when given.
func doJSON(t *testing.T, app *fiber.App, req *http.Request, dest any) int {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dest != nil {
		_ = json.NewDecoder(resp.Body).Decode(dest)
	}
	return resp.StatusCode
}

func signupUser(t *testing.T, app *fiber.App, email, firstName, lastName string) (uint, string) {
	t.Helper()

	var response struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	status := doJSON(t, app, jsonRequest(t, "POST", "/api/auth/signup", fiber.Map{
		"email":      email,
		"password":   "password123",
		"first_name": firstName,
		"last_name":  lastName,
	}, ""), &response)
	require.Equal(t, fiber.StatusCreated, status)
	require.NotEmpty(t, response.Token)

	return response.User.ID, response.Token
}

func addTeachSkill(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()

	var entry models.TeachSkill
	status := doJSON(t, app, jsonRequest(t, "POST", "/api/users/me/skills/teach", fiber.Map{
		"skill_name": name,
		"level":      3,
	}, token), &entry)
	require.Equal(t, fiber.StatusCreated, status)

	return entry.SkillID
}

func addLearnSkill(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()

	var entry models.LearnSkill
	status := doJSON(t, app, jsonRequest(t, "POST", "/api/users/me/skills/learn", fiber.Map{
		"skill_name": name,
		"level":      1,
	}, token), &entry)
	require.Equal(t, fiber.StatusCreated, status)

	return entry.SkillID
}

// swapPair provisions the minimal ledgers for a valid swap request: the
// sender teaches teachSkill, the receiver learns it, the receiver teaches
// learnSkill and the sender learns it.
type swapPair struct {
	senderID      uint
	senderToken   string
	receiverID    uint
	receiverToken string
	teachSkillID  uint
	learnSkillID  uint
}

func newSwapPair(t *testing.T, app *fiber.App, teachSkill, learnSkill string) swapPair {
	t.Helper()

	senderID, senderToken := signupUser(t, app, uuid.NewString()+"@example.com", "Sam", "Sender")
	receiverID, receiverToken := signupUser(t, app, uuid.NewString()+"@example.com", "Rita", "Receiver")

	teachSkillID := addTeachSkill(t, app, senderToken, teachSkill)
	addLearnSkill(t, app, receiverToken, teachSkill)
	learnSkillID := addTeachSkill(t, app, receiverToken, learnSkill)
	addLearnSkill(t, app, senderToken, learnSkill)

	return swapPair{
		senderID:      senderID,
		senderToken:   senderToken,
		receiverID:    receiverID,
		receiverToken: receiverToken,
		teachSkillID:  teachSkillID,
		learnSkillID:  learnSkillID,
	}
}

func createSwapRequest(t *testing.T, app *fiber.App, pair swapPair) models.SwapRequest {
	t.Helper()

	var request models.SwapRequest
	status := doJSON(t, app, jsonRequest(t, "POST", "/api/swap-requests/", fiber.Map{
		"receiver_id":    pair.receiverID,
		"teach_skill_id": pair.teachSkillID,
		"learn_skill_id": pair.learnSkillID,
		"message":        "Shall we trade?",
	}, pair.senderToken), &request)
	require.Equal(t, fiber.StatusCreated, status)

	return request
}

// acceptedSession drives a pair through request creation and acceptance and
// returns the created session.
func acceptedSession(t *testing.T, app *fiber.App, db *gorm.DB, pair swapPair) models.Session {
	t.Helper()

	request := createSwapRequest(t, app, pair)
	status := doJSON(t, app,
		jsonRequest(t, "POST", fmt.Sprintf("/api/swap-requests/%d/accept", request.ID), nil, pair.receiverToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	var session models.Session
	require.NoError(t, db.Where("swap_request_id = ?", request.ID).First(&session).Error)
	return session
}
