package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contact-service/internal/api/dto"
	"github.com/spec-kit/contact-service/internal/auth"
	"github.com/spec-kit/contact-service/internal/domain"
	"github.com/spec-kit/contact-service/internal/service"
	apperrors "github.com/spec-kit/contact-service/pkg/util"
)

const maxUserAgentLen = 500

// SubmissionsHandler manages contact-form endpoints.
type SubmissionsHandler struct {
	service *service.SubmissionService
}

// NewSubmissionsHandler constructs handler.
func NewSubmissionsHandler(submissionService *service.SubmissionService) *SubmissionsHandler {
	return &SubmissionsHandler{service: submissionService}
}

// Create POST /contacts. Open to any caller.
func (h *SubmissionsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	_, authenticated := auth.PrincipalFromContext(c)

	result, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		Name:          req.Name,
		Email:         req.Email,
		Message:       req.Message,
		CaptchaToken:  req.RecaptchaToken,
		IPAddress:     clientIP(c),
		UserAgent:     userAgent(c),
		Authenticated: authenticated,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":          "Contact form submitted successfully",
		"data":             dto.NewSubmissionSummary(result.Submission),
		"notificationSent": result.NotificationSent,
	})
}

// List GET /contacts (admin).
func (h *SubmissionsHandler) List(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	submissions, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminViews(submissions)})
}

// ListUnprocessed GET /contacts/unprocessed (admin).
func (h *SubmissionsHandler) ListUnprocessed(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	submissions, err := h.service.ListUnprocessed(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminViews(submissions)})
}

// Get GET /contacts/:id (admin).
func (h *SubmissionsHandler) Get(c *fiber.Ctx) error {
	submission, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSubmissionAdminView(submission)})
}

// MarkProcessed POST /contacts/:id/mark_processed (admin).
func (h *SubmissionsHandler) MarkProcessed(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	adminID := ""
	if principal != nil && principal.Admin != nil {
		adminID = principal.Admin.ID
	}

	submission, err := h.service.MarkProcessed(c.UserContext(), c.Params("id"), adminID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "Submission marked as processed",
		"processedAt": submission.ProcessedAt,
	})
}

// clientIP prefers the first entry of a forwarded-for chain over the direct
// connection address.
func clientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	return c.IP()
}

// userAgent captures the User-Agent header truncated to 500 characters;
// empty string when absent.
func userAgent(c *fiber.Ctx) string {
	ua := c.Get("User-Agent")
	if runes := []rune(ua); len(runes) > maxUserAgentLen {
		return string(runes[:maxUserAgentLen])
	}
	return ua
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 50)
	return pageSize, (page - 1) * pageSize
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func adminViews(submissions []domain.Submission) []dto.SubmissionAdminView {
	items := make([]dto.SubmissionAdminView, 0, len(submissions))
	for i := range submissions {
		items = append(items, dto.NewSubmissionAdminView(&submissions[i]))
	}
	return items
}
