package main

import (
	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}

	var tmp user.User
	if err := tmp.SetPassword(pwd); err != nil {
		return err
	}

	_, err = cli.usrRepo.UpdateUserPassword(usr.ID, tmp.PasswordHash)
	return err
}
