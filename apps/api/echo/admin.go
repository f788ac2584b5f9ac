package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
)

type (
	adminDeps struct {
		conf       *core.Config
		contactSvc contact.Service
		regSvc     registration.Service
		enrollSvc  enroll.Service
		smsSvc     core.SMSService
		validate   *validator.Validate
	}

	adminApi struct {
		deps adminDeps
	}
)

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps adminDeps) {
	api := adminApi{deps: deps}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/dashboard", api.dashboard)
	ag.GET("/candidates", api.queryCandidates)
	ag.GET("/candidates/:id", api.retrieveCandidate)
	ag.PATCH("/candidates/:id/hall-ticket", api.setHallTicket)
	ag.GET("/documents/:id", api.downloadDocument)
	ag.POST("/sms", api.broadcastSMS)
}

// Handlers

type DashboardResponse struct {
	Schools       int64 `json:"schools"`
	Mentors       int64 `json:"mentors"`
	Candidates    int64 `json:"candidates"`
	Contacts      int64 `json:"contacts"`
	Registrations int64 `json:"registrations"`
}

func (api *adminApi) dashboard(ctx echo.Context) error {
	schools, err := api.deps.enrollSvc.CountSchools()
	if err != nil {
		return errors.Wrap(err, "counting schools")
	}
	mentors, err := api.deps.enrollSvc.CountMentors()
	if err != nil {
		return errors.Wrap(err, "counting mentors")
	}
	candidates, err := api.deps.enrollSvc.CountCandidates()
	if err != nil {
		return errors.Wrap(err, "counting candidates")
	}
	contacts, err := api.deps.contactSvc.Count()
	if err != nil {
		return errors.Wrap(err, "counting contacts")
	}
	regs, err := api.deps.regSvc.Count()
	if err != nil {
		return errors.Wrap(err, "counting registrations")
	}

	return ctx.JSON(http.StatusOK, DashboardResponse{
		Schools:       schools,
		Mentors:       mentors,
		Candidates:    candidates,
		Contacts:      contacts,
		Registrations: regs,
	})
}

func (api *adminApi) queryCandidates(ctx echo.Context) error {
	filter := new(enroll.CandidateFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to CandidateFilter")
	}
	filter.Clean()

	candidates, err := api.deps.enrollSvc.FilterCandidates(*filter)
	if err != nil {
		return errors.Wrap(err, "querying candidates")
	}
	if candidates == nil {
		candidates = []enroll.Candidate{}
	}
	return ctx.JSON(http.StatusOK, candidates)
}

func (api *adminApi) retrieveCandidate(ctx echo.Context) error {
	c, err := api.deps.enrollSvc.GetCandidateByID(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

type HallTicketRequest struct {
	Issued bool `json:"issued"`
}

func (api *adminApi) setHallTicket(ctx echo.Context) error {
	var data HallTicketRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HallTicketRequest")
	}

	c, err := api.deps.enrollSvc.SetHallTicketIssued(ctx.Param("id"), data.Issued)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *adminApi) downloadDocument(ctx echo.Context) error {
	f, rc, err := api.deps.enrollSvc.OpenDocument(ctx.Param("id"))
	if err != nil {
		return err
	}
	defer rc.Close()
	return ctx.Stream(http.StatusOK, f.ContentType, rc)
}

type SMSBroadcastRequest struct {
	To   []string `json:"to" validate:"required,min=1,dive,phone"`
	Body string   `json:"body" validate:"required,min=3"`
}

func (r *SMSBroadcastRequest) Validate(validate *validator.Validate) error {
	r.Body = core.CleanString(r.Body)
	return validate.Struct(r)
}

func (api *adminApi) broadcastSMS(ctx echo.Context) error {
	var data SMSBroadcastRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SMSBroadcastRequest")
	}
	if err := data.Validate(api.deps.validate); err != nil {
		return err
	}

	api.deps.smsSvc.SendMessages(&core.SMSMessage{To: data.To, Body: data.Body})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Messages queued for delivery."})
}
