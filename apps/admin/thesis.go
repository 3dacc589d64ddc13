package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

func (cli *commandLine) createThesis(topicID string) error {
	th, err := cli.thesisSvc.CreateFromTopic(context.Background(), topicID)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Fprintf(cli.out, "created thesis %q (%s)\n", th.Title, th.ID)
	return nil
}

func (cli *commandLine) finishThesis(id, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening thesis file")
	}
	defer f.Close()

	th, err := cli.thesisSvc.Finish(context.Background(), id, filepath.Base(path), f)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Fprintf(cli.out, "thesis %q finished, stored as %s\n", th.Title, th.File)
	return nil
}

func (cli *commandLine) scheduleDefense(thesisID string, date time.Time) error {
	d, err := cli.thesisSvc.ScheduleDefense(context.Background(), thesisID, date)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Fprintf(cli.out, "defense %s scheduled on %s (second defense: %t)\n", d.ID, d.Date.Format(dateTimeLayout), d.SecondDefense)
	return nil
}

func (cli *commandLine) recordDefenseResult(id string, successful bool) error {
	d, err := cli.thesisSvc.RecordDefenseResult(context.Background(), id, successful)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "defense %s successful: %t\n", d.ID, d.Successful)
	return nil
}
