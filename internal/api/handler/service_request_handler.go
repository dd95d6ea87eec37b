package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

type ServiceRequestHandler struct {
	service ports.ServiceRequestService
}

func NewServiceRequestHandler(service ports.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{service: service}
}

type statusRequest struct {
	Status domain.RequestStatus `json:"status" validate:"required,oneof=pending accepted rejected in_progress completed cancelled"`
	Notes  string               `json:"notes,omitempty" validate:"max=500"`
}

func (h *ServiceRequestHandler) Create(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindDocument(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Service request created successfully", doc)
}

// List returns the caller's requests; ?view=provider lists incoming ones.
func (h *ServiceRequestHandler) List(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), actor, c.QueryParam("view"), listFilter(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *ServiceRequestHandler) Get(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", doc)
}

func (h *ServiceRequestHandler) UpdateStatus(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	doc, err := h.service.UpdateStatus(c.Request().Context(), actor, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Status updated successfully", doc)
}

func (h *ServiceRequestHandler) AddFeedback(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req domain.Feedback
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	doc, err := h.service.AddFeedback(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Feedback submitted successfully", doc)
}
