package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sayansi/core/contact"
)

type contactApi struct {
	svc      contact.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc contact.Service, validate *validator.Validate) {
	api := contactApi{svc: svc, validate: validate}

	cg := g.Group("/contacts")
	cg.POST("", api.create)
	cg.GET("", api.query, jwt, adminMiddleware())
}

func (api *contactApi) create(ctx echo.Context) error {
	var data contact.NewContact
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContact")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating contact")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{
		Message: "Thank you for reaching out! We will get back to you shortly.",
		Data:    c,
	})
}

func (api *contactApi) query(ctx echo.Context) error {
	contacts, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying contacts")
	}
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	return ctx.JSON(http.StatusOK, contacts)
}

// CreatedResponse wraps a created entity with a human-friendly message.
type CreatedResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}
