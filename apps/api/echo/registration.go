package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sayansi/core/registration"
)

type registrationApi struct {
	svc      registration.Service
	validate *validator.Validate
}

func registerRegistrationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc registration.Service, validate *validator.Validate) {
	api := registrationApi{svc: svc, validate: validate}

	rg := g.Group("/registrations")
	rg.POST("", api.create)

	ag := rg.Group("", jwt, adminMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
}

func (api *registrationApi) create(ctx echo.Context) error {
	var data registration.NewRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating registration")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{
		Message: "Registration received! We will contact you with payment instructions.",
		Data:    r,
	})
}

func (api *registrationApi) query(ctx echo.Context) error {
	regs, err := api.svc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) retrieve(ctx echo.Context) error {
	r, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}
