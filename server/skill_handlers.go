package server

import (
	"skillswap/models"

	"github.com/gofiber/fiber/v2"
)

// skillRequest is the payload for adding a ledger entry. The skill is
// resolved by name: the first mention creates the canonical record.
type skillRequest struct {
	SkillName   string `json:"skill_name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	Note        string `json:"note"`
}

func (r *skillRequest) validate() error {
	if r.SkillName == "" {
		return models.NewValidationError("Skill name is required")
	}
	if r.Level < 1 || r.Level > 5 {
		return models.NewValidationError("Level must be between 1 and 5")
	}
	return nil
}

// GetSkills handles GET /api/skills
func (s *Server) GetSkills(c *fiber.Ctx) error {
	skills, err := s.skillRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(skills)
}

// SearchSkills handles GET /api/skills/search?query=
func (s *Server) SearchSkills(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Query parameter is required"))
	}

	skills, err := s.skillRepo.SearchByName(c.Context(), query)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(skills)
}

// GetSkillsByCategory handles GET /api/skills/category/:category
func (s *Server) GetSkillsByCategory(c *fiber.Ctx) error {
	skills, err := s.skillRepo.ListByCategory(c.Context(), c.Params("category"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(skills)
}

// AddTeachSkill handles POST /api/users/me/skills/teach
func (s *Server) AddTeachSkill(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req skillRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	skill, err := s.skillRepo.FindOrCreate(ctx, req.SkillName, req.Category, req.Description)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	exists, err := s.ledgerRepo.HasTeach(ctx, userID, skill.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if exists {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Skill already added to teach list"))
	}

	entry := &models.TeachSkill{
		UserID:  userID,
		SkillID: skill.ID,
		Level:   req.Level,
		Note:    req.Note,
	}
	if err := s.ledgerRepo.AddTeach(ctx, entry); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	entry.Skill = *skill

	s.invalidateMatchCache(ctx, userID)

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetTeachSkills handles GET /api/users/me/skills/teach
func (s *Server) GetTeachSkills(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	entries, err := s.ledgerRepo.TeachByUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(entries)
}

// RemoveTeachSkill handles DELETE /api/users/me/skills/teach/:skillId
func (s *Server) RemoveTeachSkill(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid skill ID"))
	}

	exists, err := s.ledgerRepo.HasTeach(ctx, userID, uint(skillID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !exists {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Teach skill", skillID))
	}

	if err := s.ledgerRepo.RemoveTeach(ctx, userID, uint(skillID)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.invalidateMatchCache(ctx, userID)

	return c.SendStatus(fiber.StatusOK)
}

// AddLearnSkill handles POST /api/users/me/skills/learn
func (s *Server) AddLearnSkill(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req skillRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := req.validate(); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	skill, err := s.skillRepo.FindOrCreate(ctx, req.SkillName, req.Category, req.Description)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	exists, err := s.ledgerRepo.HasLearn(ctx, userID, skill.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if exists {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Skill already added to learn list"))
	}

	entry := &models.LearnSkill{
		UserID:  userID,
		SkillID: skill.ID,
		Level:   req.Level,
		Note:    req.Note,
	}
	if err := s.ledgerRepo.AddLearn(ctx, entry); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	entry.Skill = *skill

	s.invalidateMatchCache(ctx, userID)

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetLearnSkills handles GET /api/users/me/skills/learn
func (s *Server) GetLearnSkills(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	entries, err := s.ledgerRepo.LearnByUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(entries)
}

// RemoveLearnSkill handles DELETE /api/users/me/skills/learn/:skillId
func (s *Server) RemoveLearnSkill(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	skillID, err := c.ParamsInt("skillId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid skill ID"))
	}

	exists, err := s.ledgerRepo.HasLearn(ctx, userID, uint(skillID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !exists {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Learn skill", skillID))
	}

	if err := s.ledgerRepo.RemoveLearn(ctx, userID, uint(skillID)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.invalidateMatchCache(ctx, userID)

	return c.SendStatus(fiber.StatusOK)
}
