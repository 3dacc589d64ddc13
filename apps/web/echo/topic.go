package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/topic"
	"github.com/olety/Diplomatool/core/user"
)

type (
	topicViews struct {
		ServerDeps
	}

	topicListData struct {
		Topics      []topic.Topic // available to every student
		Proposals   []topic.Topic // suggested by the current student
		Supervisors []user.User
		Form        topic.ProposeTopic
		Errors      map[string]string
		Submitted   bool
	}
)

func registerTopicRoutes(app *echo.Echo, jwt echo.MiddlewareFunc, deps ServerDeps) {
	v := topicViews{ServerDeps: deps}

	g := app.Group("/topic_list", jwt, groupMiddleware(user.GroupStudent, deps.UserSvc))
	g.GET("", v.list)
	g.POST("", v.propose)
}

func (v *topicViews) render(ctx echo.Context, code int, data topicListData) error {
	c := ctx.Request().Context()
	usr, err := getContextUser(ctx, v.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if data.Topics, err = v.TopicSvc.QueryAvailable(c); err != nil {
		return errors.Wrap(err, "querying available topics")
	}
	if data.Proposals, err = v.TopicSvc.QueryByStudent(c, usr.ID); err != nil {
		return errors.Wrap(err, "querying student topics")
	}
	if data.Supervisors, err = v.UserSvc.QueryByGroup(c, user.GroupSupervisor); err != nil {
		return errors.Wrap(err, "querying supervisors")
	}
	return ctx.Render(code, "topic_list", data)
}

func (v *topicViews) list(ctx echo.Context) error {
	return v.render(ctx, http.StatusOK, topicListData{})
}

func (v *topicViews) propose(ctx echo.Context) error {
	var data topic.ProposeTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProposeTopic")
	}
	usr, err := getContextUser(ctx, v.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	err = data.Validate(v.Validate)
	if err == nil {
		_, err = v.TopicSvc.Propose(ctx.Request().Context(), usr, data)
	}
	if err != nil {
		fields, ok := core.FieldErrors(err, v.Translator)
		if !ok {
			return errors.Wrap(err, "proposing topic")
		}
		return v.render(ctx, http.StatusBadRequest, topicListData{Form: data, Errors: fields})
	}

	return v.render(ctx, http.StatusOK, topicListData{Submitted: true})
}
