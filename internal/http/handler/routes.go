package handler

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pdfshelf/internal/library"
	"pdfshelf/internal/model"
)

// DocumentListResult is the response shape of the list endpoint.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// createDocumentRequest is the JSON body of the generate endpoint.
type createDocumentRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	CoverImage string `json:"cover_image"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc library.Service) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", ListDocuments(svc))
	app.Post("/documents", UploadDocument(svc))
	app.Post("/documents/generate", CreateDocument(svc))
	app.Get("/documents/:id", GetDocument(svc))
	app.Delete("/documents/:id", DeleteDocument(svc))
	app.Post("/documents/:id/open", OpenDocument(svc))

	app.Get("/open/:token", ServeOpenedDocument(svc))
}

// HealthCheck reports whether the document store is reachable.
// @Summary Health check
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns the cached library view, most recent first.
// @Summary List documents
// @Success 200 {object} DocumentListResult
// @Router /documents [get]
func ListDocuments(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs := svc.Documents()
		return c.JSON(DocumentListResult{Items: docs, Total: len(docs)})
	}
}

// UploadDocument stores an uploaded PDF (multipart/form-data).
// Fields: file (required), name, description, cover_image.
// @Summary Upload a PDF
// @Accept mpfd
// @Success 201 {object} model.Document
// @Router /documents [post]
func UploadDocument(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The multipart form drives an explicit upload session so invalid
		// flows are rejected by the same transitions the UI uses.
		session := library.NewUploadSession().Begin()

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		session, err = session.ChooseFile(fh.Filename, fh.Size)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
		}

		cover := c.FormValue("cover_image")
		if cover != "" {
			if session, err = session.ChooseCover(); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
			}
		}
		if _, err = session.Confirm(); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		name := c.FormValue("name")
		if name == "" {
			name = fh.Filename
		}

		doc, err := svc.Upload(c.UserContext(), data, name, c.FormValue("description"), cover)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// CreateDocument synthesizes a new PDF from title and body text.
// @Summary Generate a PDF from text
// @Accept json
// @Success 201 {object} model.Document
// @Router /documents/generate [post]
func CreateDocument(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		doc, err := svc.Create(c.UserContext(), req.Title, req.Body, req.CoverImage)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns a single document's metadata by id.
// @Summary Get document
// @Success 200 {object} model.Document
// @Router /documents/{id} [get]
func GetDocument(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document. Deleting an absent id still succeeds.
// @Summary Delete document
// @Success 204
// @Router /documents/{id} [delete]
func DeleteDocument(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// OpenDocument issues a temporary viewable handle for a document.
// @Summary Open document
// @Success 201 {object} library.OpenHandle
// @Router /documents/{id}/open [post]
func OpenDocument(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		handle, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(handle)
	}
}

// ServeOpenedDocument streams the PDF bytes behind a live open handle.
// @Summary Stream opened document
// @Produce application/pdf
// @Router /open/{token} [get]
func ServeOpenedDocument(svc library.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Opened(c.Params("token"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, doc.MimeType)
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.Name+`.pdf"`)
		return c.Send(doc.Data)
	}
}
