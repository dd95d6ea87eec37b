package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/domain"
)

// respond writes a successful envelope.
func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, domain.Envelope[any]{Success: true, Message: message, Data: data})
}

// bindAndValidate decodes the JSON body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// bindDocument decodes a schemaless JSON object body.
func bindDocument(c echo.Context) (domain.Document, error) {
	doc := domain.Document{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
