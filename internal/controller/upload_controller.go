package controller

import (
	"io"

	"ai-studypartner-be/internal/pkg/serverutils"
	"ai-studypartner-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	UploadDocument(ctx *fiber.Ctx) error
}

type uploadController struct {
	uploadService service.IUploadService
}

func NewUploadController(uploadService service.IUploadService) IUploadController {
	return &uploadController{
		uploadService: uploadService,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session/:id/document", c.UploadDocument)
}

// UploadDocument replaces the session's study document with the uploaded
// file. Indexing runs in the background; the response only acknowledges
// the extraction.
func (c *uploadController) UploadDocument(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session id"))
	}

	fileHeader, err := ctx.FormFile("document")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Document file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	res, err := c.uploadService.ReplaceDocument(ctx.Context(), userId, sessionId, fileHeader.Filename, payload, mimeType)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document accepted for indexing", res))
}
