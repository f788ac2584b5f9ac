package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/sayansi/core/user"
	inmemdb "github.com/trezcool/sayansi/storage/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)

	return &commandLine{
		usrRepo:       usrRepo,
		ensureIndexes: func() error { return nil },
	}
}

func createUser(t *testing.T, uname, email, pwd string) user.User {
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Username:  uname,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := createUser(t, "awe", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no email", args: []string{"adduser", "-username", "lol"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "lol", "-email", "lol@test.cd"}, wantErr: errHelp},
		{
			name: "duplicate username", args: []string{"adduser", "-username", existing.Username, "-email", "new@test.cd"},
			extra: extra{pwd: "lol"}, wantErr: user.ErrUsernameExists,
		},
		{
			name: "duplicate email", args: []string{"adduser", "-username", "newuser", "-email", existing.Email},
			extra: extra{pwd: "lol"}, wantErr: user.ErrEmailExists,
		},
		{name: "ok", args: []string{"adduser", "-username", "boss", "-email", "boss@test.cd"}, extra: extra{pwd: "lol"}},
		{name: "ok owner", args: []string{"adduser", "-username", "owner", "-email", "owner@test.cd", "-owner"}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	boss, err := usrRepo.GetUserByUsername("boss")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if !boss.IsAdmin() {
		t.Error("expected boss to be admin")
	}
	owner, err := usrRepo.GetUserByUsername("owner")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if user.MaxRolePriority(owner.Roles) != user.RolePriority(user.RoleAdminOwner) {
		t.Error("expected owner to have the owner role")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "mdr")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID(): %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
