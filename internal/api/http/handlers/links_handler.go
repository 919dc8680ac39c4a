package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/annotation-auth/internal/api/dto"
	"github.com/spec-kit/annotation-auth/internal/links"
	apperrors "github.com/spec-kit/annotation-auth/pkg/util"
)

// LinksHandler renders links for annotations.
type LinksHandler struct {
	links *links.Generator
}

// NewLinksHandler constructs handler.
func NewLinksHandler(generator *links.Generator) *LinksHandler {
	return &LinksHandler{links: generator}
}

// Links handles POST /api/links.
func (h *LinksHandler) Links(c *fiber.Ctx) error {
	var req dto.LinksRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ID == "" {
		return apperrors.NewValidationError("id required", map[string]any{"field": "id"})
	}

	ann := links.Annotation{ID: req.ID, References: req.References, TargetURI: req.TargetURI}

	html, err := h.links.HTML(ann)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	resp := dto.LinksResponse{HTML: html}

	incontext, ok, err := h.links.InContext(c.UserContext(), ann)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if ok {
		resp.InContext = &incontext
	}
	return c.JSON(fiber.Map{"data": resp})
}
