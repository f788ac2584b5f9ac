package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/enroll"
)

type enrollApi struct {
	conf     *core.Config
	svc      enroll.Service
	validate *validator.Validate
}

func registerEnrollAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc enroll.Service, validate *validator.Validate, conf *core.Config) {
	api := enrollApi{conf: conf, svc: svc, validate: validate}

	sg := g.Group("/schools")
	sg.POST("/register", api.registerSchool)
	sg.GET("", api.querySchools, jwt, adminMiddleware())

	mg := g.Group("/mentors")
	mg.POST("/register", api.registerMentor)
	mg.GET("", api.queryMentors, jwt, adminMiddleware())

	cg := g.Group("/candidates")
	cg.POST("/register", api.registerCandidate)
}

// Handlers

func (api *enrollApi) registerSchool(ctx echo.Context) error {
	var data enroll.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.RegisterSchool(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{
		Message: "School registered! Share the school code with your mentors.",
		Data:    s,
	})
}

func (api *enrollApi) querySchools(ctx echo.Context) error {
	schools, err := api.svc.QueryAllSchools()
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []enroll.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *enrollApi) registerMentor(ctx echo.Context) error {
	var data enroll.NewMentor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMentor")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.RegisterMentor(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{
		Message: "Mentor registered! Share the mentor code with your candidates.",
		Data:    m,
	})
}

func (api *enrollApi) queryMentors(ctx echo.Context) error {
	mentors, err := api.svc.QueryAllMentors()
	if err != nil {
		return errors.Wrap(err, "querying mentors")
	}
	if mentors == nil {
		mentors = []enroll.Mentor{}
	}
	return ctx.JSON(http.StatusOK, mentors)
}

// registerCandidate reads a multipart form: text fields plus the photo and
// signature documents.
func (api *enrollApi) registerCandidate(ctx echo.Context) error {
	data, closeFiles, err := api.bindCandidateForm(ctx)
	if err != nil {
		return err
	}
	defer closeFiles()

	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.RegisterCandidate(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{
		Message: "Registration received! Note down the seat number; it is required on exam day.",
		Data:    c,
	})
}

func (api *enrollApi) bindCandidateForm(ctx echo.Context) (enroll.NewCandidate, func(), error) {
	data := enroll.NewCandidate{
		MentorCode:  core.CleanString(ctx.FormValue("mentor_code")),
		Name:        core.CleanString(ctx.FormValue("name")),
		DateOfBirth: core.CleanString(ctx.FormValue("date_of_birth")),
		Gender:      core.CleanString(ctx.FormValue("gender"), true /* lower */),
		Email:       core.CleanString(ctx.FormValue("email"), true /* lower */),
		Contact:     core.CleanString(ctx.FormValue("contact")),
		Address: enroll.Address{
			Street: core.CleanString(ctx.FormValue("street")),
			City:   core.CleanString(ctx.FormValue("city")),
			State:  core.CleanString(ctx.FormValue("state")),
			PIN:    core.CleanString(ctx.FormValue("pin")),
		},
		GradeLevel: core.CleanString(ctx.FormValue("grade_level"), true /* lower */),
		SchoolName: core.CleanString(ctx.FormValue("school_name")),
	}

	var closers []func()
	closeFiles := func() {
		for _, cl := range closers {
			cl()
		}
	}

	for _, doc := range []struct {
		field string
		dest  **enroll.Upload
	}{
		{"photo", &data.Photo},
		{"signature", &data.Signature},
	} {
		fh, err := ctx.FormFile(doc.field)
		if err != nil {
			continue // absence is reported by validation
		}
		f, err := fh.Open()
		if err != nil {
			closeFiles()
			return enroll.NewCandidate{}, func() {}, errors.Wrapf(err, "opening %s upload", doc.field)
		}
		closers = append(closers, func() { _ = f.Close() })
		*doc.dest = &enroll.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		}
	}
	return data, closeFiles, nil
}
