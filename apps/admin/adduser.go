package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/baraza/core"
	"github.com/trezcool/baraza/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, first, last, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:         uname,
			Email:            email,
			FirstName:        first,
			LastName:         last,
			Role:             user.RoleStudent,
			MembershipStatus: user.MembershipApproved,
			CreatedAt:        now,
		}
	}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr, nil)
	}
	return err
}
