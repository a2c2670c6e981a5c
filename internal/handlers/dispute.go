package handlers

import (
	"errors"

	"carepay/internal/models"
	"carepay/internal/repositories"
	"carepay/internal/services/dispute"
	"carepay/internal/services/storage"
	"carepay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type DisputeHandler struct {
	disputeService dispute.Service
	uploads        *storage.Client
}

func NewDisputeHandler(disputeService dispute.Service, uploads *storage.Client) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
		uploads:        uploads,
	}
}

func disputeError(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dispute.ErrNotFound), errors.Is(err, dispute.ErrBookingNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, dispute.ErrNotParticipant),
		errors.Is(err, dispute.ErrNotRespondent),
		errors.Is(err, dispute.ErrNotComplainant),
		errors.Is(err, dispute.ErrNotAuthorized):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, dispute.ErrInvalidInput),
		errors.Is(err, dispute.ErrSelfDispute),
		errors.Is(err, dispute.ErrRefundInfoRequired),
		errors.Is(err, dispute.ErrInvalidRating):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, dispute.ErrInvalidTransition),
		errors.Is(err, dispute.ErrResponseClosed),
		errors.Is(err, dispute.ErrAlreadyRated),
		errors.Is(err, dispute.ErrNotClosed),
		errors.Is(err, dispute.ErrNotRefundable),
		errors.Is(err, dispute.ErrDisputeClosed):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, dispute.ErrFeePoolExhausted):
		return utils.UnprocessableEntity(c, err.Error())
	case errors.Is(err, dispute.ErrRefundFailed):
		return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{"error": err.Error()})
	default:
		return utils.InternalError(c, "Internal error")
	}
}

func (h *DisputeHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input dispute.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	d, err := h.disputeService.Create(c.Context(), claims.UserID, input)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Created(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	d, err := h.disputeService.Get(c.Context(), claims.UserID, claims.IsAdmin(), uint(id))
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) ListMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.ParsePagination(c)
	disputes, total, err := h.disputeService.ListForUser(c.Context(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list disputes")
	}
	return utils.Success(c, utils.Paged(disputes, total, p))
}

func (h *DisputeHandler) Respond(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input struct {
		Message  string                  `json:"message"`
		Evidence []dispute.EvidenceInput `json:"evidence"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	d, err := h.disputeService.Respond(c.Context(), claims.UserID, uint(id), input.Message, input.Evidence)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	d, err := h.disputeService.Withdraw(c.Context(), claims.UserID, uint(id), input.Reason)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

// UploadEvidence accepts a multipart file, stores it in object storage and
// attaches the resulting URL as evidence.
func (h *DisputeHandler) UploadEvidence(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}
	if h.uploads == nil {
		return utils.Respond(c, fiber.StatusServiceUnavailable, fiber.Map{"error": "evidence upload not configured"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "Missing file")
	}
	kind := c.FormValue("kind", models.EvidenceDocument)
	description := c.FormValue("description")

	file, err := fileHeader.Open()
	if err != nil {
		return utils.InternalError(c, "Failed to read file")
	}
	defer file.Close()

	url, err := h.uploads.UploadEvidence(uint(id), fileHeader.Filename, file, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return utils.InternalError(c, "Failed to store file")
	}

	err = h.disputeService.AddEvidence(c.Context(), claims.UserID, uint(id), dispute.EvidenceInput{
		Kind:        kind,
		URL:         url,
		Description: description,
	})
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Created(c, fiber.Map{"url": url})
}

func (h *DisputeHandler) Rate(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	d, err := h.disputeService.RateResolution(c.Context(), claims.UserID, uint(id), input.Rating, input.Feedback)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

// Admin endpoints

func (h *DisputeHandler) ListAll(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	filter := repositories.DisputeFilter{
		Status:      models.DisputeStatus(c.Query("status")),
		Priority:    c.Query("priority"),
		DisputeType: c.Query("type"),
		Severity:    c.Query("severity"),
		AssignedTo:  uint(c.QueryInt("assigned_to", 0)),
		Search:      c.Query("search"),
		Limit:       p.Limit,
		Offset:      p.Offset,
	}

	disputes, total, err := h.disputeService.ListAll(c.Context(), filter)
	if err != nil {
		return utils.InternalError(c, "Failed to list disputes")
	}
	return utils.Success(c, utils.Paged(disputes, total, p))
}

func (h *DisputeHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.disputeService.Stats(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to compute stats")
	}
	return utils.Success(c, stats)
}

func (h *DisputeHandler) Assign(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input struct {
		AssigneeID uint `json:"assignee_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if input.AssigneeID == 0 {
		input.AssigneeID = claims.UserID
	}

	d, err := h.disputeService.Assign(c.Context(), claims.UserID, uint(id), input.AssigneeID)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) UpdateStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input struct {
		Status      string `json:"status"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	d, err := h.disputeService.UpdateStatus(c.Context(), claims.UserID, uint(id), models.DisputeStatus(input.Status), input.Description)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) Decide(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input dispute.DecideInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	d, err := h.disputeService.Decide(c.Context(), claims.UserID, uint(id), input)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) ProcessRefund(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	d, err := h.disputeService.ProcessRefund(c.Context(), claims.UserID, uint(id))
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Success(c, fiber.Map{"dispute": d})
}

func (h *DisputeHandler) AddInternalNote(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "Invalid dispute id")
	}

	var input struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	err = h.disputeService.AddInternalNote(c.Context(), claims.UserID, uint(id), input.Note)
	if err != nil {
		return disputeError(c, err)
	}
	return utils.Created(c, fiber.Map{"message": "Note added"})
}
