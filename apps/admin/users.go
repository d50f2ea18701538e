package main

import (
	"context"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/user"
)

// addUser creates an approved user. An existing user gets the new password and role instead.
func (cli *commandLine) addUser(email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	role := user.RoleSchoolAdmin
	if isAdmin {
		role = user.RoleAdmin
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, email, pwd, role, true)
		return err
	}

	if usr, err = cli.usrSvc.SetPassword(ctx, usr, pwd); err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{Role: role})
	return err
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, pwd)
	return err
}

func (cli *commandLine) approve(email string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.Approve(ctx, usr.ID, true)
	return err
}
