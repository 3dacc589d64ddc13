package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core/topic"
)

// Topic actions
const (
	actionCheck   = "check"
	actionPublish = "publish"
	actionVote    = "vote"
)

var errUnknownAction = errors.New("unknown topic action")

func (cli *commandLine) addTopic(name, description, level, supervisorEmail, studentEmail string) error {
	ctx := context.Background()
	supervisor, err := cli.usrSvc.GetByEmail(ctx, supervisorEmail)
	if err != nil {
		return errors.Wrap(err, "getting supervisor")
	}
	nt := topic.NewTopic{Name: name, Description: description, Level: level, SupervisorID: supervisor.ID}
	if studentEmail != "" {
		student, err := cli.usrSvc.GetByEmail(ctx, studentEmail)
		if err != nil {
			return errors.Wrap(err, "getting student")
		}
		nt.StudentID = student.ID
	}

	if err = nt.Validate(cli.validate); err != nil {
		return cli.validationErr(err)
	}
	t, err := cli.topicSvc.Create(ctx, nt)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Fprintf(cli.out, "created topic %q (%s)\n", t.Name, t.ID)
	return nil
}

func (cli *commandLine) moveTopic(id, action string) error {
	var move func(ctx context.Context, id string) (topic.Topic, error)
	switch action {
	case actionCheck:
		move = cli.topicSvc.Check
	case actionPublish:
		move = cli.topicSvc.Publish
	case actionVote:
		move = cli.topicSvc.VoteFor
	default:
		return errors.Wrap(errUnknownAction, action)
	}

	t, err := move(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "topic %q is %s\n", t.Name, t.State())
	return nil
}
