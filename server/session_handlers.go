package server

import (
	"context"
	"fmt"
	"sort"
	"time"

	"skillswap/models"
	"skillswap/repository"
	"skillswap/reputation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// createSessionFromRequest builds the session for an accepted swap request
// inside the caller's transaction. Idempotent: if a session already exists
// for the request it is returned unchanged. Otherwise the session is created
// with a generated meeting link and the four progress records (one per
// participant per role).
func (s *Server) createSessionFromRequest(ctx context.Context, tx *gorm.DB, request *models.SwapRequest) (*models.Session, error) {
	sessionRepo := repository.NewSessionRepository(tx)

	existing, err := sessionRepo.GetBySwapRequestID(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	link := s.meetings.NewLink()
	session := &models.Session{
		SwapRequestID: request.ID,
		Title: fmt.Sprintf("Skill Swap: %s ↔ %s",
			request.TeachSkill.Name, request.LearnSkill.Name),
		Description: fmt.Sprintf("Skill swap session between %s and %s",
			request.Sender.FullName(), request.Receiver.FullName()),
		MeetingURL:      link.URL,
		MeetingPlatform: link.Platform,
		Status:          models.SessionStatusCreated,
	}
	if err := sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	// Each participant tracks the skill they teach and the skill they learn.
	records := []*models.ProgressRecord{
		{SessionID: session.ID, UserID: request.SenderID, SkillID: request.TeachSkillID},
		{SessionID: session.ID, UserID: request.SenderID, SkillID: request.LearnSkillID},
		{SessionID: session.ID, UserID: request.ReceiverID, SkillID: request.LearnSkillID},
		{SessionID: session.ID, UserID: request.ReceiverID, SkillID: request.TeachSkillID},
	}
	progressRepo := repository.NewProgressRepository(tx)
	if err := progressRepo.CreateBatch(ctx, records); err != nil {
		return nil, err
	}

	return session, nil
}

// userRoles resolves which skill the user teaches and which they learn in
// the exchange, based on their side of the underlying request.
func userRoles(request *models.SwapRequest, userID uint) (teachSkillID, learnSkillID uint) {
	if userID == request.SenderID {
		return request.TeachSkillID, request.LearnSkillID
	}
	return request.LearnSkillID, request.TeachSkillID
}

// getParticipantSession loads a session and verifies the actor is one of the
// two participants.
func (s *Server) getParticipantSession(ctx context.Context, sessionID, userID uint) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.SwapRequest.IsParticipant(userID) {
		return nil, models.NewForbiddenError("You are not authorized to access this session")
	}
	return session, nil
}

// GetSessions handles GET /api/sessions
func (s *Server) GetSessions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	sessions, err := s.sessionRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(sessions)
}

// GetCategorizedSessions handles GET /api/sessions/categorized. Sessions are
// bucketed by status; cancelled sessions are excluded from every bucket.
func (s *Server) GetCategorizedSessions(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	sessions, err := s.sessionRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	created := []models.Session{}
	upcoming := []models.Session{}
	inProgress := []models.Session{}
	completed := []models.Session{}

	for _, session := range sessions {
		switch session.Status {
		case models.SessionStatusCreated:
			created = append(created, session)
		case models.SessionStatusScheduled:
			upcoming = append(upcoming, session)
		case models.SessionStatusInProgress:
			inProgress = append(inProgress, session)
		case models.SessionStatusCompleted:
			completed = append(completed, session)
		case models.SessionStatusCancelled:
			// excluded
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i].ScheduledDate, upcoming[j].ScheduledDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].UpdatedAt.After(completed[j].UpdatedAt)
	})

	return c.JSON(fiber.Map{
		"created":    created,
		"upcoming":   upcoming,
		"inProgress": inProgress,
		"completed":  completed,
	})
}

// GetSession handles GET /api/sessions/:sessionId. The response includes the
// partner and each side's confirmation state.
func (s *Server) GetSession(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	request := &session.SwapRequest
	partner := request.Receiver
	partnerID := request.ReceiverID
	if userID == request.ReceiverID {
		partner = request.Sender
		partnerID = request.SenderID
	}

	yourConfirmed, err := participantConfirmed(ctx, s.progressRepo, request, session.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	partnerConfirmed, err := participantConfirmed(ctx, s.progressRepo, request, session.ID, partnerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"session":           session,
		"partner":           partner,
		"your_confirmed":    yourConfirmed,
		"partner_confirmed": partnerConfirmed,
	})
}

// GetMeetingDetails handles GET /api/sessions/:sessionId/meeting. It resolves
// which skill the caller teaches and which they learn from their side of the
// underlying request.
func (s *Server) GetMeetingDetails(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	request := &session.SwapRequest
	partner := request.Receiver
	skillYouTeach := request.TeachSkill.Name
	skillYouLearn := request.LearnSkill.Name
	if userID == request.ReceiverID {
		partner = request.Sender
		skillYouTeach, skillYouLearn = skillYouLearn, skillYouTeach
	}

	return c.JSON(fiber.Map{
		"session_id":       session.ID,
		"title":            session.Title,
		"meeting_url":      session.MeetingURL,
		"meeting_platform": session.MeetingPlatform,
		"status":           session.Status,
		"partner_name":     partner.FullName(),
		"skill_you_teach":  skillYouTeach,
		"skill_you_learn":  skillYouLearn,
		"scheduled_date":   session.ScheduledDate,
		"duration_minutes": session.DurationMinutes,
	})
}

// ScheduleSession handles PUT /api/sessions/:sessionId/schedule
func (s *Server) ScheduleSession(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var req struct {
		ScheduledDate   time.Time `json:"scheduled_date"`
		DurationMinutes int       `json:"duration_minutes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	session.ScheduledDate = &req.ScheduledDate
	session.DurationMinutes = req.DurationMinutes
	session.Status = models.SessionStatusScheduled

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(session)
}

// StartSession handles PUT /api/sessions/:sessionId/start. Any participant
// may start the session regardless of its prior status.
func (s *Server) StartSession(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	session.Status = models.SessionStatusInProgress

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(session)
}

// AddMeetingURL handles PUT /api/sessions/:sessionId/meeting-url
func (s *Server) AddMeetingURL(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var req struct {
		MeetingURL      string `json:"meeting_url"`
		MeetingPlatform string `json:"meeting_platform"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	session.MeetingURL = req.MeetingURL
	session.MeetingPlatform = req.MeetingPlatform

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(session)
}

// UpdateSessionNotes handles PUT /api/sessions/:sessionId/notes
func (s *Server) UpdateSessionNotes(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	session.SessionNotes = req.Notes

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(session)
}

// AddSharedResources handles PUT /api/sessions/:sessionId/resources
func (s *Server) AddSharedResources(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var req struct {
		Resources string `json:"resources"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	session.SharedResources = req.Resources

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(session)
}

// SubmitFeedback handles PUT /api/sessions/:sessionId/feedback. The acting
// user rates their partner: the rating and feedback are stored on the
// partner's progress records, since the aggregator reads ratings off the
// recipient's records.
func (s *Server) SubmitFeedback(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var req struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Rating < 1 || req.Rating > 5 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Rating must be between 1 and 5"))
	}

	session, err := s.getParticipantSession(ctx, uint(sessionID), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	partnerID := session.SwapRequest.ReceiverID
	if userID == session.SwapRequest.ReceiverID {
		partnerID = session.SwapRequest.SenderID
	}

	records, err := s.progressRepo.BySessionAndUser(ctx, session.ID, partnerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	for i := range records {
		rating := req.Rating
		records[i].RatingGiven = &rating
		records[i].Feedback = req.Feedback
		if err := s.progressRepo.Update(ctx, &records[i]); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

// CompleteSession handles PUT /api/sessions/:sessionId/complete — the
// dual-confirmation path. The acting user's records are confirmed first;
// the session only completes once both participants have confirmed. The
// whole check-and-transition runs as one unit of work over a locked
// session row so two racing confirmations cannot lose the transition.
func (s *Server) CompleteSession(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var result *models.Session
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		sessionRepo := repository.NewSessionRepository(tx)
		progressRepo := repository.NewProgressRepository(tx)

		session, err := sessionRepo.GetByIDForUpdate(ctx, uint(sessionID))
		if err != nil {
			return err
		}
		request := &session.SwapRequest
		if !request.IsParticipant(userID) {
			return models.NewForbiddenError("You are not authorized to access this session")
		}

		if err := confirmParticipant(ctx, progressRepo, request, session.ID, userID); err != nil {
			return err
		}

		senderConfirmed, err := participantConfirmed(ctx, progressRepo, request, session.ID, request.SenderID)
		if err != nil {
			return err
		}
		receiverConfirmed, err := participantConfirmed(ctx, progressRepo, request, session.ID, request.ReceiverID)
		if err != nil {
			return err
		}

		// The transition fires exactly once: repeat calls against an already
		// completed session must not re-stamp or re-run rating aggregation.
		if senderConfirmed && receiverConfirmed && session.Status != models.SessionStatusCompleted {
			now := time.Now()
			session.Status = models.SessionStatusCompleted
			session.CompletedAt = &now
			if err := sessionRepo.Update(ctx, session); err != nil {
				return err
			}
			if err := s.applyRatings(ctx, tx, session.ID); err != nil {
				return err
			}
		}

		result = session
		return nil
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	return c.JSON(result)
}

// MarkSessionCompleted handles PUT /api/sessions/:sessionId/mark-completed —
// the unconditional force path. The session completes immediately and all of
// the acting user's own records are force-confirmed; the counterpart's
// records are untouched and no rating aggregation runs.
func (s *Server) MarkSessionCompleted(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	sessionID, err := c.ParamsInt("sessionId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid session ID"))
	}

	var result *models.Session
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		sessionRepo := repository.NewSessionRepository(tx)
		progressRepo := repository.NewProgressRepository(tx)

		session, err := sessionRepo.GetByIDForUpdate(ctx, uint(sessionID))
		if err != nil {
			return err
		}
		if !session.SwapRequest.IsParticipant(userID) {
			return models.NewForbiddenError("You are not authorized to access this session")
		}

		now := time.Now()
		session.Status = models.SessionStatusCompleted
		if session.CompletedAt == nil {
			session.CompletedAt = &now
		}
		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}

		records, err := progressRepo.BySessionAndUser(ctx, session.ID, userID)
		if err != nil {
			return err
		}
		for i := range records {
			records[i].TaughtConfirmed = true
			records[i].LearnedConfirmed = true
			if records[i].ConfirmedAt == nil {
				records[i].ConfirmedAt = &now
			}
			if err := progressRepo.Update(ctx, &records[i]); err != nil {
				return err
			}
		}

		result = session
		return nil
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	return c.JSON(result)
}

// confirmParticipant marks the acting user's two records: the taught flag on
// their teach-role record and the learned flag on their learn-role record.
// ConfirmedAt is stamped the first time either flag flips.
func confirmParticipant(ctx context.Context, progressRepo repository.ProgressRepository, request *models.SwapRequest, sessionID, userID uint) error {
	teachSkillID, learnSkillID := userRoles(request, userID)

	records, err := progressRepo.BySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range records {
		record := &records[i]
		changed := false
		switch record.SkillID {
		case teachSkillID:
			if !record.TaughtConfirmed {
				record.TaughtConfirmed = true
				changed = true
			}
		case learnSkillID:
			if !record.LearnedConfirmed {
				record.LearnedConfirmed = true
				changed = true
			}
		}
		if changed {
			if record.ConfirmedAt == nil {
				record.ConfirmedAt = &now
			}
			if err := progressRepo.Update(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

// participantConfirmed reports whether the user has confirmed both of their
// roles: taught on their teach-role record and learned on their learn-role
// record.
func participantConfirmed(ctx context.Context, progressRepo repository.ProgressRepository, request *models.SwapRequest, sessionID, userID uint) (bool, error) {
	teachSkillID, learnSkillID := userRoles(request, userID)

	records, err := progressRepo.BySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return false, err
	}

	taught, learned := false, false
	for _, record := range records {
		switch record.SkillID {
		case teachSkillID:
			if record.TaughtConfirmed {
				taught = true
			}
		case learnSkillID:
			if record.LearnedConfirmed {
				learned = true
			}
		}
	}
	return taught && learned, nil
}

// applyRatings folds the session's ratings into each recipient's running
// score. Runs inside the completion transaction.
func (s *Server) applyRatings(ctx context.Context, tx *gorm.DB, sessionID uint) error {
	progressRepo := repository.NewProgressRepository(tx)
	userRepo := repository.NewUserRepository(tx)

	records, err := progressRepo.BySession(ctx, sessionID)
	if err != nil {
		return err
	}

	for userID, average := range reputation.SessionAverages(records) {
		user, err := userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		updated := reputation.Blend(user.Rating, average)
		user.Rating = &updated
		if err := userRepo.Update(ctx, user); err != nil {
			return err
		}
	}
	return nil
}
