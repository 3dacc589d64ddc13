package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) assignReview(thesisID, reviewerEmail string) error {
	ctx := context.Background()
	reviewer, err := cli.usrSvc.GetByEmail(ctx, reviewerEmail)
	if err != nil {
		return errors.Wrap(err, "getting reviewer")
	}
	r, err := cli.reviewSvc.Assign(ctx, thesisID, reviewer.ID)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Fprintf(cli.out, "review %s assigned to %s\n", r.ID, reviewer.Email)
	return nil
}
