package server

import (
	"skillswap/models"
	"skillswap/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateSwapRequest handles POST /api/swap-requests
func (s *Server) CreateSwapRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		ReceiverID   uint   `json:"receiver_id"`
		TeachSkillID uint   `json:"teach_skill_id"`
		LearnSkillID uint   `json:"learn_skill_id"`
		Message      string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.ReceiverID == userID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Cannot send a swap request to yourself"))
	}

	if _, err := s.userRepo.GetByID(ctx, req.ReceiverID); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	// Duplicate-request guard: one pending request per (sender, receiver).
	pending, err := s.swapRepo.PendingExists(ctx, userID, req.ReceiverID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if pending {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("A pending request already exists with this user"))
	}

	teachSkill, err := s.skillRepo.GetByID(ctx, req.TeachSkillID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	learnSkill, err := s.skillRepo.GetByID(ctx, req.LearnSkillID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	// The sender must actually offer the skill they promise to teach.
	hasTeach, err := s.ledgerRepo.HasTeach(ctx, userID, teachSkill.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !hasTeach {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You don't have this skill in your teach list"))
	}

	// The receiver must actually want to learn the skill on offer.
	wantsLearn, err := s.ledgerRepo.HasLearn(ctx, req.ReceiverID, teachSkill.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !wantsLearn {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Receiver doesn't want to learn this skill"))
	}

	request := &models.SwapRequest{
		SenderID:     userID,
		ReceiverID:   req.ReceiverID,
		TeachSkillID: teachSkill.ID,
		LearnSkillID: learnSkill.ID,
		Status:       models.SwapRequestStatusPending,
		Message:      req.Message,
	}
	if err := s.swapRepo.Create(ctx, request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	request, err = s.swapRepo.GetByID(ctx, request.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetSentRequests handles GET /api/swap-requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	requests, err := s.swapRepo.ListBySender(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(requests)
}

// GetReceivedRequests handles GET /api/swap-requests/received
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	requests, err := s.swapRepo.ListByReceiver(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(requests)
}

// GetSwapRequest handles GET /api/swap-requests/:requestId
func (s *Server) GetSwapRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	requestID, err := c.ParamsInt("requestId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request ID"))
	}

	request, err := s.swapRepo.GetByID(c.Context(), uint(requestID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if !request.IsParticipant(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not authorized to view this request"))
	}

	return c.JSON(request)
}

// AcceptSwapRequest handles POST /api/swap-requests/:requestId/accept.
// Accepting the request and creating its session are one unit of work: the
// request row is locked for the duration and a session creation failure
// rolls the acceptance back.
func (s *Server) AcceptSwapRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requestID, err := c.ParamsInt("requestId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request ID"))
	}

	var accepted *models.SwapRequest
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		swapRepo := repository.NewSwapRequestRepository(tx)

		request, err := swapRepo.GetByIDForUpdate(ctx, uint(requestID))
		if err != nil {
			return err
		}

		if request.ReceiverID != userID {
			return models.NewForbiddenError("You are not authorized to accept this request")
		}
		if request.Status != models.SwapRequestStatusPending {
			return models.NewConflictError("Swap request is not pending")
		}

		request.Status = models.SwapRequestStatusAccepted
		if err := swapRepo.Update(ctx, request); err != nil {
			return err
		}

		if _, err := s.createSessionFromRequest(ctx, tx, request); err != nil {
			return err
		}

		accepted = request
		return nil
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	return c.JSON(accepted)
}

// RejectSwapRequest handles POST /api/swap-requests/:requestId/reject
func (s *Server) RejectSwapRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requestID, err := c.ParamsInt("requestId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request ID"))
	}

	request, err := s.swapRepo.GetByID(ctx, uint(requestID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if request.ReceiverID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not authorized to reject this request"))
	}
	if request.Status != models.SwapRequestStatusPending {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Swap request is not pending"))
	}

	request.Status = models.SwapRequestStatusRejected
	if err := s.swapRepo.Update(ctx, request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(request)
}

// CancelSwapRequest handles POST /api/swap-requests/:requestId/cancel.
// Only the sender may cancel, and only while the request is still pending.
func (s *Server) CancelSwapRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requestID, err := c.ParamsInt("requestId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request ID"))
	}

	request, err := s.swapRepo.GetByID(ctx, uint(requestID))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	if request.SenderID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not authorized to cancel this request"))
	}
	if request.Status != models.SwapRequestStatusPending {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Swap request is not pending"))
	}

	request.Status = models.SwapRequestStatusCancelled
	if err := s.swapRepo.Update(ctx, request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(request)
}

// respondAppError maps an AppError escaping a transaction to its HTTP status.
func respondAppError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if appErr, ok := err.(*models.AppError); ok {
		switch appErr.Code {
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "CONFLICT":
			status = fiber.StatusConflict
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		}
	}
	return models.RespondWithError(c, status, err)
}
