package main

import (
	"context"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/epointy/backend/core"
	qrsvc "github.com/epointy/backend/services/qr"
)

// badge re-prints a student's QR badge, e.g. when the welcome email was lost.
func (cli *commandLine) badge(email, out string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if !usr.IsStudent() || usr.StudentUUID == "" {
		return fmt.Errorf("%s has no badge to print", usr.Email)
	}

	png, err := qrsvc.NewBadgeService().Badge(usr.StudentUUID)
	if err != nil {
		return errors.Wrap(err, "encoding badge")
	}
	if err := ioutil.WriteFile(out, png, 0644); err != nil {
		return errors.Wrap(err, "writing badge file")
	}
	logger.Printf("badge written to %s", out)
	return nil
}
