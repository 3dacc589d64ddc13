package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/olety/Diplomatool/core"
	"github.com/olety/Diplomatool/core/user"
)

// addUser updates or creates a user.User.
// An existing user keeps the fields left empty and is reactivated.
func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, nu.Email)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		if err = nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
			return cli.validationErr(err)
		}
		if nu.FacultyID != "" {
			if _, err = cli.facultySvc.GetByID(ctx, nu.FacultyID); err != nil {
				return errors.Wrap(err, "getting faculty")
			}
		}
		if usr, err = cli.usrSvc.Create(ctx, nu); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created user %s (%s)\n", usr.Email, usr.ID)
		return nil
	}

	if nu.FirstName != "" {
		usr.FirstName = core.CleanString(nu.FirstName)
	}
	if nu.LastName != "" {
		usr.LastName = core.CleanString(nu.LastName)
	}
	if nu.Degree != "" {
		usr.Degree = core.CleanString(nu.Degree)
	}
	if nu.Department != "" {
		usr.Department = core.CleanString(nu.Department)
	}
	if nu.FacultyID != "" {
		if _, err = cli.facultySvc.GetByID(ctx, nu.FacultyID); err != nil {
			return errors.Wrap(err, "getting faculty")
		}
		usr.FacultyID = nu.FacultyID
	}
	if len(nu.Groups) > 0 {
		sort.Strings(nu.Groups)
		if err = cli.validate.Var(nu.Groups, "allgroups"); err != nil {
			return errors.Errorf("groups: must be among %s", strings.Join(user.AllGroups, ", "))
		}
		usr.Groups = nu.Groups
	}
	usr.IsAdmin = usr.IsAdmin || nu.IsAdmin
	usr.IsActive = true
	if usr, err = cli.usrSvc.SetPassword(ctx, usr, nu.Password); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "updated user %s (%s)\n", usr.Email, usr.ID)
	return nil
}
