package main

import (
	"context"
	"fmt"

	"github.com/olety/Diplomatool/core/faculty"
)

func (cli *commandLine) addFaculty(nf faculty.NewFaculty) error {
	if err := nf.Validate(cli.validate); err != nil {
		return cli.validationErr(err)
	}
	f, err := cli.facultySvc.Create(context.Background(), nf)
	if err != nil {
		return cli.validationErr(err)
	}
	fmt.Fprintf(cli.out, "created faculty %s (%s)\n", f.Code, f.ID)
	return nil
}
