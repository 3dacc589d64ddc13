package main

import (
	"context"

	"github.com/olety/Diplomatool/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	data := user.ResetUserPassword{Token: "-", UID: usr.ID, Password: pwd, PasswordConfirm: pwd}
	if err = data.Validate(cli.validate); err != nil {
		return cli.validationErr(err)
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, pwd)
	return err
}
