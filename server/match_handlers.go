package server

import (
	"context"

	"skillswap/cache"
	"skillswap/matching"
	"skillswap/models"

	"github.com/gofiber/fiber/v2"
)

// GetMatches handles GET /api/matches
func (s *Server) GetMatches(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var matches []matching.Match
	err := cache.CacheAside(ctx, cache.MatchKey(userID), &matches, cache.MatchTTL, func() error {
		var err error
		matches, err = s.computeMatches(ctx, userID)
		return err
	})
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(matches)
}

// GetCategorizedMatches handles GET /api/matches/categorized
func (s *Server) GetCategorizedMatches(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	matches, err := s.computeMatches(ctx, userID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(matching.Categorize(matches))
}

// GetUsersForSkill handles GET /api/matches/skill/:skillId
func (s *Server) GetUsersForSkill(c *fiber.Ctx) error {
	ctx := c.Context()
	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid skill ID"))
	}

	if _, err := s.skillRepo.GetByID(ctx, uint(skillID)); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	teachEntries, err := s.ledgerRepo.TeachBySkill(ctx, uint(skillID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	learnEntries, err := s.ledgerRepo.LearnBySkill(ctx, uint(skillID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	teachers := make([]models.User, 0, len(teachEntries))
	for _, entry := range teachEntries {
		teachers = append(teachers, entry.User)
	}
	learners := make([]models.User, 0, len(learnEntries))
	for _, entry := range learnEntries {
		learners = append(learners, entry.User)
	}

	return c.JSON(fiber.Map{
		"teachers": teachers,
		"learners": learners,
	})
}

// computeMatches snapshots every user's ledgers and scores the requesting
// user against all counterparts. One pass over two ledger queries; the
// per-user candidate loop happens in memory.
func (s *Server) computeMatches(ctx context.Context, userID uint) ([]matching.Match, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	allTeach, err := s.ledgerRepo.AllTeach(ctx)
	if err != nil {
		return nil, err
	}
	allLearn, err := s.ledgerRepo.AllLearn(ctx)
	if err != nil {
		return nil, err
	}

	ledgersByUser := make(map[uint]matching.Ledgers)
	for _, entry := range allTeach {
		l := ledgersByUser[entry.UserID]
		l.Teach = append(l.Teach, entry.Skill)
		ledgersByUser[entry.UserID] = l
	}
	for _, entry := range allLearn {
		l := ledgersByUser[entry.UserID]
		l.Learn = append(l.Learn, entry.Skill)
		ledgersByUser[entry.UserID] = l
	}

	candidates := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID != userID {
			candidates = append(candidates, u)
		}
	}

	return matching.Compute(ledgersByUser[userID], candidates, ledgersByUser), nil
}
