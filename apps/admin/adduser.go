package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/user"
)

// addUser creates an active admin user.User
func (cli *commandLine) addUser(uname, email, pwd string, isOwner bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckUsernameUniqueness(uname, email); err != nil {
		return err
	}

	roles := []string{user.RoleAdmin}
	if isOwner {
		roles = user.AllRoles
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Username:  uname,
		Email:     email,
		IsActive:  true,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	_, err := cli.usrRepo.CreateUser(usr)
	return err
}
