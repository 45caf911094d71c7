package server

import (
	"fmt"
	"testing"
	"time"

	"skillswap/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionDualConfirmation(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)

	completePath := fmt.Sprintf("/api/sessions/%d/complete", session.ID)

	t.Run("one confirmation does not complete", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.senderToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.NotEqual(t, models.SessionStatusCompleted, result.Status)
		assert.Nil(t, result.CompletedAt)

		var records []models.ProgressRecord
		require.NoError(t, db.Where("session_id = ? AND user_id = ?", session.ID, pair.senderID).
			Find(&records).Error)
		for _, record := range records {
			assert.NotNil(t, record.ConfirmedAt)
		}
	})

	t.Run("repeat confirmation by same user changes nothing", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.senderToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.NotEqual(t, models.SessionStatusCompleted, result.Status)
	})

	t.Run("second participant completes the session", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.receiverToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, models.SessionStatusCompleted, result.Status)
		require.NotNil(t, result.CompletedAt)
	})
}

func TestCompleteAppliesRatings(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)

	// The sender carries a prior rating so the blend path is exercised;
	// the receiver starts fresh.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", pair.senderID).Update("rating", 3.0).Error)

	feedbackPath := fmt.Sprintf("/api/sessions/%d/feedback", session.ID)
	status := doJSON(t, app, jsonRequest(t, "PUT", feedbackPath, fiber.Map{
		"rating":   5,
		"feedback": "Great teacher!",
	}, pair.senderToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	status = doJSON(t, app, jsonRequest(t, "PUT", feedbackPath, fiber.Map{
		"rating": 4,
	}, pair.receiverToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	completePath := fmt.Sprintf("/api/sessions/%d/complete", session.ID)
	status = doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.senderToken), nil)
	require.Equal(t, fiber.StatusOK, status)
	status = doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.receiverToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	var sender, receiver models.User
	require.NoError(t, db.First(&sender, pair.senderID).Error)
	require.NoError(t, db.First(&receiver, pair.receiverID).Error)

	// Sender was rated 4 by the receiver: 0.7*3.0 + 0.3*4.0 = 3.3
	require.NotNil(t, sender.Rating)
	assert.InDelta(t, 3.3, *sender.Rating, 1e-9)

	// Receiver had no rating and was rated 5 by the sender
	require.NotNil(t, receiver.Rating)
	assert.InDelta(t, 5.0, *receiver.Rating, 1e-9)
}

func TestCompleteAfterCompletionDoesNotReaggregate(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)

	feedbackPath := fmt.Sprintf("/api/sessions/%d/feedback", session.ID)
	status := doJSON(t, app, jsonRequest(t, "PUT", feedbackPath, fiber.Map{
		"rating": 5,
	}, pair.senderToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	completePath := fmt.Sprintf("/api/sessions/%d/complete", session.ID)
	status = doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.senderToken), nil)
	require.Equal(t, fiber.StatusOK, status)
	status = doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.receiverToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	var receiver models.User
	require.NoError(t, db.First(&receiver, pair.receiverID).Error)
	require.NotNil(t, receiver.Rating)
	require.InDelta(t, 5.0, *receiver.Rating, 1e-9)

	// Simulate rating drift from later sessions, then hit complete again.
	// The aggregator must not blend the old session average back in.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", pair.receiverID).Update("rating", 3.0).Error)
	completedAt := fetchSession(t, db, session.ID).CompletedAt

	var result models.Session
	status = doJSON(t, app, jsonRequest(t, "PUT", completePath, nil, pair.senderToken), &result)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.SessionStatusCompleted, result.Status)

	require.NoError(t, db.First(&receiver, pair.receiverID).Error)
	require.NotNil(t, receiver.Rating)
	assert.InDelta(t, 3.0, *receiver.Rating, 1e-9)

	after := fetchSession(t, db, session.ID).CompletedAt
	require.NotNil(t, after)
	assert.True(t, after.Equal(*completedAt))
}

func fetchSession(t *testing.T, db *gorm.DB, id uint) models.Session {
	t.Helper()
	var session models.Session
	require.NoError(t, db.First(&session, id).Error)
	return session
}

func TestFeedbackValidation(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)

	path := fmt.Sprintf("/api/sessions/%d/feedback", session.ID)
	for _, rating := range []int{0, 6} {
		status := doJSON(t, app, jsonRequest(t, "PUT", path, fiber.Map{"rating": rating}, pair.senderToken), nil)
		assert.Equal(t, fiber.StatusBadRequest, status)
	}
}

func TestMarkCompletedForcesCompletion(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)

	var result models.Session
	status := doJSON(t, app,
		jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/mark-completed", session.ID), nil, pair.senderToken),
		&result)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.SessionStatusCompleted, result.Status)
	require.NotNil(t, result.CompletedAt)

	var senderRecords []models.ProgressRecord
	require.NoError(t, db.Where("session_id = ? AND user_id = ?", session.ID, pair.senderID).
		Find(&senderRecords).Error)
	for _, record := range senderRecords {
		assert.True(t, record.TaughtConfirmed)
		assert.True(t, record.LearnedConfirmed)
	}

	var receiverRecords []models.ProgressRecord
	require.NoError(t, db.Where("session_id = ? AND user_id = ?", session.ID, pair.receiverID).
		Find(&receiverRecords).Error)
	for _, record := range receiverRecords {
		assert.False(t, record.TaughtConfirmed)
		assert.False(t, record.LearnedConfirmed)
	}

	// The force path skips rating aggregation
	var sender models.User
	require.NoError(t, db.First(&sender, pair.senderID).Error)
	assert.Nil(t, sender.Rating)

	t.Run("repeat call keeps the original completion time", func(t *testing.T) {
		firstCompletion := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		require.NoError(t, db.Model(&models.Session{}).
			Where("id = ?", session.ID).Update("completed_at", firstCompletion).Error)

		status := doJSON(t, app,
			jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/mark-completed", session.ID), nil, pair.receiverToken),
			nil)
		require.Equal(t, fiber.StatusOK, status)

		completedAt := fetchSession(t, db, session.ID).CompletedAt
		require.NotNil(t, completedAt)
		assert.True(t, completedAt.Equal(firstCompletion))
	})
}

func TestScheduleStartAndUpdateSession(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)

	t.Run("schedule", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app,
			jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/schedule", session.ID), fiber.Map{
				"scheduled_date":   time.Now().Add(48 * time.Hour).Format(time.RFC3339),
				"duration_minutes": 60,
			}, pair.senderToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, models.SessionStatusScheduled, result.Status)
		assert.NotNil(t, result.ScheduledDate)
		assert.Equal(t, 60, result.DurationMinutes)
	})

	t.Run("start", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app,
			jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/start", session.ID), nil, pair.receiverToken),
			&result)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, models.SessionStatusInProgress, result.Status)
	})

	t.Run("notes and resources", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app,
			jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/notes", session.ID), fiber.Map{
				"notes": "Covered open chords",
			}, pair.senderToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "Covered open chords", result.SessionNotes)

		status = doJSON(t, app,
			jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/resources", session.ID), fiber.Map{
				"resources": "https://example.com/chord-chart",
			}, pair.receiverToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "https://example.com/chord-chart", result.SharedResources)
	})

	t.Run("meeting url", func(t *testing.T) {
		var result models.Session
		status := doJSON(t, app,
			jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/meeting-url", session.ID), fiber.Map{
				"meeting_url":      "https://zoom.example.com/j/123",
				"meeting_platform": "ZOOM",
			}, pair.senderToken), &result)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "https://zoom.example.com/j/123", result.MeetingURL)
		assert.Equal(t, "ZOOM", result.MeetingPlatform)
	})
}

func TestGetSessionShowsConfirmationState(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)
	path := fmt.Sprintf("/api/sessions/%d", session.ID)

	var detail struct {
		YourConfirmed    bool `json:"your_confirmed"`
		PartnerConfirmed bool `json:"partner_confirmed"`
		Partner          struct {
			ID uint `json:"id"`
		} `json:"partner"`
	}
	status := doJSON(t, app, jsonRequest(t, "GET", path, nil, pair.senderToken), &detail)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, detail.YourConfirmed)
	assert.False(t, detail.PartnerConfirmed)
	assert.Equal(t, pair.receiverID, detail.Partner.ID)

	status = doJSON(t, app,
		jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/complete", session.ID), nil, pair.senderToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	status = doJSON(t, app, jsonRequest(t, "GET", path, nil, pair.receiverToken), &detail)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, detail.YourConfirmed)
	assert.True(t, detail.PartnerConfirmed)
	assert.Equal(t, pair.senderID, detail.Partner.ID)
}

func TestMeetingDetailsPerSide(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)
	path := fmt.Sprintf("/api/sessions/%d/meeting", session.ID)

	var details struct {
		SkillYouTeach string `json:"skill_you_teach"`
		SkillYouLearn string `json:"skill_you_learn"`
		PartnerName   string `json:"partner_name"`
		MeetingURL    string `json:"meeting_url"`
	}

	status := doJSON(t, app, jsonRequest(t, "GET", path, nil, pair.senderToken), &details)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Guitar", details.SkillYouTeach)
	assert.Equal(t, "Chess", details.SkillYouLearn)
	assert.NotEmpty(t, details.MeetingURL)

	status = doJSON(t, app, jsonRequest(t, "GET", path, nil, pair.receiverToken), &details)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Chess", details.SkillYouTeach)
	assert.Equal(t, "Guitar", details.SkillYouLearn)
}

func TestSessionAccessIsParticipantOnly(t *testing.T) {
	_, app, db := newTestServer(t)
	pair := newSwapPair(t, app, "Guitar", "Chess")
	session := acceptedSession(t, app, db, pair)
	_, outsiderToken := signupUser(t, app, "outsider@example.com", "Olga", "Out")

	paths := []struct {
		method string
		path   string
	}{
		{"GET", fmt.Sprintf("/api/sessions/%d", session.ID)},
		{"GET", fmt.Sprintf("/api/sessions/%d/meeting", session.ID)},
		{"PUT", fmt.Sprintf("/api/sessions/%d/start", session.ID)},
		{"PUT", fmt.Sprintf("/api/sessions/%d/complete", session.ID)},
		{"PUT", fmt.Sprintf("/api/sessions/%d/mark-completed", session.ID)},
	}
	for _, p := range paths {
		status := doJSON(t, app, jsonRequest(t, p.method, p.path, nil, outsiderToken), nil)
		assert.Equal(t, fiber.StatusForbidden, status, "%s %s", p.method, p.path)
	}
}

func TestCategorizedSessions(t *testing.T) {
	_, app, db := newTestServer(t)

	// One user with four counterparts, one session per status
	_, aliceToken := signupUser(t, app, "alice@example.com", "Alice", "Nguyen")
	guitarID := addTeachSkill(t, app, aliceToken, "Guitar")

	partnerSkills := []string{"Chess", "Yoga", "Cooking", "Spanish"}
	sessions := make([]models.Session, 0, len(partnerSkills))
	for i, skill := range partnerSkills {
		partnerID, partnerToken := signupUser(t, app,
			fmt.Sprintf("partner%d@example.com", i), "Pat", fmt.Sprintf("Partner%d", i))
		teachSkillID := addTeachSkill(t, app, partnerToken, skill)
		addLearnSkill(t, app, aliceToken, skill)
		addLearnSkill(t, app, partnerToken, "Guitar")

		var request models.SwapRequest
		status := doJSON(t, app, jsonRequest(t, "POST", "/api/swap-requests/", fiber.Map{
			"receiver_id":    partnerID,
			"teach_skill_id": guitarID,
			"learn_skill_id": teachSkillID,
		}, aliceToken), &request)
		require.Equal(t, fiber.StatusCreated, status)

		status = doJSON(t, app,
			jsonRequest(t, "POST", fmt.Sprintf("/api/swap-requests/%d/accept", request.ID), nil, partnerToken), nil)
		require.Equal(t, fiber.StatusOK, status)

		var session models.Session
		require.NoError(t, db.Where("swap_request_id = ?", request.ID).First(&session).Error)
		sessions = append(sessions, session)
	}

	// sessions[0] stays CREATED
	status := doJSON(t, app,
		jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/schedule", sessions[1].ID), fiber.Map{
			"scheduled_date":   time.Now().Add(24 * time.Hour).Format(time.RFC3339),
			"duration_minutes": 45,
		}, aliceToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	status = doJSON(t, app,
		jsonRequest(t, "PUT", fmt.Sprintf("/api/sessions/%d/mark-completed", sessions[2].ID), nil, aliceToken), nil)
	require.Equal(t, fiber.StatusOK, status)

	require.NoError(t, db.Model(&models.Session{}).
		Where("id = ?", sessions[3].ID).
		Update("status", models.SessionStatusCancelled).Error)

	var categorized struct {
		Created    []models.Session `json:"created"`
		Upcoming   []models.Session `json:"upcoming"`
		InProgress []models.Session `json:"inProgress"`
		Completed  []models.Session `json:"completed"`
	}
	status = doJSON(t, app, jsonRequest(t, "GET", "/api/sessions/categorized", nil, aliceToken), &categorized)
	require.Equal(t, fiber.StatusOK, status)

	require.Len(t, categorized.Created, 1)
	assert.Equal(t, sessions[0].ID, categorized.Created[0].ID)
	require.Len(t, categorized.Upcoming, 1)
	assert.Equal(t, sessions[1].ID, categorized.Upcoming[0].ID)
	assert.Empty(t, categorized.InProgress)
	require.Len(t, categorized.Completed, 1)
	assert.Equal(t, sessions[2].ID, categorized.Completed[0].ID)

	// Cancelled sessions still show in the flat listing
	var all []models.Session
	status = doJSON(t, app, jsonRequest(t, "GET", "/api/sessions/", nil, aliceToken), &all)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, all, 4)
}
