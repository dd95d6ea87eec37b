package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/ports"
)

// ListingHandler serves /vehicles or /materials.
type ListingHandler struct {
	service ports.ListingService
	// noun is used in response messages, e.g. "Vehicle".
	noun string
}

func NewListingHandler(service ports.ListingService, noun string) *ListingHandler {
	return &ListingHandler{service: service, noun: noun}
}

func (h *ListingHandler) List(c echo.Context) error {
	res, err := h.service.List(c.Request().Context(), listFilter(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *ListingHandler) Get(c echo.Context) error {
	doc, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", doc)
}

func (h *ListingHandler) Create(c echo.Context) error {
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
	return respond(c, http.StatusCreated, h.noun+" created successfully", doc)
}

func (h *ListingHandler) Update(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindDocument(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.noun+" updated successfully", doc)
}

func (h *ListingHandler) Delete(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, h.noun+" deleted successfully", nil)
}

func (h *ListingHandler) UpdateAvailability(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindDocument(c)
	if err != nil {
		return err
	}
	doc, err := h.service.SetAvailability(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Availability updated successfully", doc)
}

func (h *ListingHandler) Categories(c echo.Context) error {
	return respond(c, http.StatusOK, "", h.service.Categories())
}
