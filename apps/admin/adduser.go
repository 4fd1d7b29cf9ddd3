package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/epointy/backend/core"
	"github.com/epointy/backend/core/user"
)

// addUser creates a user with a known password, bypassing the welcome email
// flow. Intended for bootstrapping the first admin account.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		AvatarURL: user.DefaultAvatarURL(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}

	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return errors.Wrap(err, "creating user")
}
