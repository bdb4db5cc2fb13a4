package main

import (
	"context"
	"fmt"
	"time"

	"github.com/campusbridge/backend/core"
	"github.com/campusbridge/backend/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, fname, lname, role, pwd string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	var known bool
	for _, r := range user.AllRoles {
		if role == r {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown role %q", role)
	}

	if usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email}); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.FirstName = core.CleanString(fname)
	usr.LastName = core.CleanString(lname)
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
