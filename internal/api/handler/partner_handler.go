package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/ports"
)

type PartnerHandler struct {
	service ports.PartnerService
}

func NewPartnerHandler(service ports.PartnerService) *PartnerHandler {
	return &PartnerHandler{service: service}
}

func (h *PartnerHandler) Register(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindDocument(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Register(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Partner registered successfully", doc)
}

func (h *PartnerHandler) Mine(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Mine(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", doc)
}

func (h *PartnerHandler) UpdateMine(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindDocument(c)
	if err != nil {
		return err
	}
	doc, err := h.service.UpdateMine(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Partner profile updated successfully", doc)
}

func (h *PartnerHandler) List(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), actor, listFilter(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", res)
}

func (h *PartnerHandler) Verify(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindDocument(c)
	if err != nil {
		return err
	}
	doc, err := h.service.Verify(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Partner verification updated", doc)
}
