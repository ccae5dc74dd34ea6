// Package web provides HTTP handlers and REST API endpoints for the
// template editor.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowdeck/flowdeck/pkg/services"
)

type APIHandlers struct {
	templateService *services.Template
	sessionService  *services.Session
	validator       *validator.Validate
}

func NewAPIHandlers(
	templateService *services.Template,
	sessionService *services.Session,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		templateService: templateService,
		sessionService:  sessionService,
		validator:       validator,
	}
}

// Template endpoints

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	templates, err := h.templateService.List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"templates":   templates,
		"total_count": len(templates),
	})
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	template, err := h.templateService.GetByID(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	if template == nil {
		return notFound(c, "Template not found")
	}

	return c.JSON(template)
}

func (h *APIHandlers) SaveTemplate(c fiber.Ctx) error {
	var req SaveTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	template, err := h.templateService.Save(c.Context(), services.SaveRequest{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Graph:       req.Workflow,
		ChangeNote:  req.ChangeNote,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

func (h *APIHandlers) RestoreTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	versionID := c.Params("versionId")

	if id == "" || versionID == "" {
		return badRequest(c, "Template ID and version ID are required")
	}

	template, err := h.templateService.Restore(c.Context(), id, versionID)
	if err != nil {
		return handleServiceError(c, err)
	}

	if template == nil {
		return notFound(c, "Template or version not found")
	}

	return c.JSON(template)
}

func (h *APIHandlers) CloneTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	clone, err := h.templateService.Clone(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if clone == nil {
		return notFound(c, "Template not found")
	}

	return c.Status(fiber.StatusCreated).JSON(clone)
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	deleted, err := h.templateService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if !deleted {
		return notFound(c, "Template not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExportTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	data, err := h.templateService.Export(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	if data == nil {
		return notFound(c, "Template not found")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Send(data)
}

func (h *APIHandlers) ImportTemplate(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return badRequest(c, "Request body is required")
	}

	template, err := h.templateService.Import(c.Context(), body)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

// Session graph endpoints

func (h *APIHandlers) GetGraph(c fiber.Ctx) error {
	return c.JSON(h.sessionService.Graph(c.Params("session")))
}

func (h *APIHandlers) SetGraph(c fiber.Ctx) error {
	var req SetGraphRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.sessionService.SetGraph(c.Params("session"), req.Workflow); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionService.Graph(c.Params("session")))
}

func (h *APIHandlers) InsertStep(c fiber.Ctx) error {
	var req InsertStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.sessionService.InsertAfter(c.Params("session"), req.After, req.Step); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.sessionService.Graph(c.Params("session")))
}

func (h *APIHandlers) DeleteStep(c fiber.Ctx) error {
	stepID, err := strconv.Atoi(c.Params("stepId"))
	if err != nil {
		return badRequest(c, "Step ID must be an integer")
	}

	if err := h.sessionService.DeleteStep(c.Params("session"), stepID); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionService.Graph(c.Params("session")))
}

func (h *APIHandlers) MoveStep(c fiber.Ctx) error {
	stepID, err := strconv.Atoi(c.Params("stepId"))
	if err != nil {
		return badRequest(c, "Step ID must be an integer")
	}

	var req MoveStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.sessionService.MoveStep(c.Params("session"), stepID, req.NewIndex); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionService.Graph(c.Params("session")))
}

func (h *APIHandlers) ReorderSteps(c fiber.Ctx) error {
	var req ReorderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.sessionService.Reorder(c.Params("session"), req.Order); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(h.sessionService.Graph(c.Params("session")))
}

func (h *APIHandlers) GetColumns(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"columns": h.sessionService.Columns(c.Params("session")),
	})
}

func (h *APIHandlers) GetConnectors(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connectors": h.sessionService.Connectors(c.Params("session")),
	})
}

func (h *APIHandlers) GenerateGraph(c fiber.Ctx) error {
	var req GenerateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	graph, err := h.sessionService.Generate(c.Context(), c.Params("session"), req.Prompt, req.Preferences)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(graph)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.templateService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowdeck API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowdeck API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
