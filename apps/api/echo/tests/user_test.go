package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/sayansi/apps/api/echo"
	"github.com/trezcool/sayansi/core/user"
	emailsvc "github.com/trezcool/sayansi/services/email"
)

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	pwd := "S3cret!pwd"
	usr := createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", pwd, []string{user.RoleAdmin}, true)
	inactive := createUser(t, env.usrRepo, "Gone", "gone01", "gone@test.cd", pwd, []string{user.RoleAdmin}, false)

	login := func(t *testing.T, uname, pwd string) (*httptest.ResponseRecorder, string) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login",
			marchallObj(t, map[string]string{"username": uname, "password": pwd}))
		env.app.ServeHTTP(rec, req)

		var resp echoapi.LoginResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec, resp.Token
	}

	t.Run("ok with username", func(t *testing.T) {
		rec, token := login(t, usr.Username, pwd)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NotEmpty(t, token)

		// token carries the expected claims
		claims := new(echoapi.Claims)
		parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return env.conf.SecretKey, nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
		assert.Equal(t, usr.ID, claims.Subject)
		assert.True(t, claims.IsAdmin)

		// last login was stamped
		refreshed, err := env.usrRepo.GetUserByID(usr.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.LastLogin.IsZero())
	})

	t.Run("ok with email", func(t *testing.T) {
		rec, token := login(t, usr.Email, pwd)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotEmpty(t, token)
	})

	t.Run("bad password", func(t *testing.T) {
		rec, _ := login(t, usr.Username, "nope")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication failed")
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, _ := login(t, "ghost", pwd)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "authentication failed")
	})

	t.Run("deactivated account", func(t *testing.T) {
		rec, _ := login(t, inactive.Username, pwd)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "account deactivated")
	})

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, map[string]string{}))
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_userApi_tokenRefresh(t *testing.T) {
	env := setup(t)
	usr := createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, env.conf, usr))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp echoapi.LoginResponse
		decodeBody(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	usr := createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	t.Run("request sends a reset mail", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset",
			marchallObj(t, map[string]string{"email": usr.Email}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, usr.Email, msg.To[0].Address)
		assert.Contains(t, msg.TextContent, "/admin/password-reset?")
		assert.Contains(t, msg.TextContent, "uid=")
		assert.Contains(t, msg.TextContent, "token=")
	})

	t.Run("unknown email does not leak", func(t *testing.T) {
		emailsvc.ClearSentMessages()

		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset",
			marchallObj(t, map[string]string{"email": "ghost@test.cd"}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code) // same response as success
		assert.Empty(t, emailsvc.SentMessages)
	})

	t.Run("confirm resets the password", func(t *testing.T) {
		token, err := user.MakeToken(env.conf, usr)
		require.NoError(t, err)

		newPwd := "Tr0ub4dor&3xyz"
		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm",
			marchallObj(t, map[string]string{
				"uid":              user.EncodeUID(usr),
				"token":            token,
				"password":         newPwd,
				"password_confirm": newPwd,
			}))
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		refreshed, err := env.usrRepo.GetUserByID(usr.ID)
		require.NoError(t, err)
		assert.NoError(t, refreshed.CheckPassword(newPwd))
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		token, err := user.MakeToken(env.conf, usr)
		require.NoError(t, err)
		tampered := token[:len(token)-4] + "XXXX"

		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm",
			marchallObj(t, map[string]string{
				"uid":              user.EncodeUID(usr),
				"token":            tampered,
				"password":         "Tr0ub4dor&3abc",
				"password_confirm": "Tr0ub4dor&3abc",
			}))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid")
	})

	t.Run("expired token rejected", func(t *testing.T) {
		restore := user.NowFunc
		user.NowFunc = func() time.Time {
			return time.Now().Add(-(env.conf.Server.PasswordResetTimeoutDelta + 48*time.Hour))
		}
		token, err := user.MakeToken(env.conf, usr)
		user.NowFunc = restore
		require.NoError(t, err)

		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm",
			marchallObj(t, map[string]string{
				"uid":              user.EncodeUID(usr),
				"token":            token,
				"password":         "Tr0ub4dor&3def",
				"password_confirm": "Tr0ub4dor&3def",
			}))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired")
	})

	t.Run("weak password rejected", func(t *testing.T) {
		token, err := user.MakeToken(env.conf, usr)
		require.NoError(t, err)

		req, rec := newRequest(http.MethodPost, "/v1/users/password-reset-confirm",
			marchallObj(t, map[string]string{
				"uid":              user.EncodeUID(usr),
				"token":            token,
				"password":         "12345678",
				"password_confirm": "12345678",
			}))
		env.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_userApi_register(t *testing.T) {
	env := setup(t)
	owner := createUser(t, env.usrRepo, "Owner", "owner1", "owner@test.cd", "", user.AllRoles, true)
	admin := createUser(t, env.usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	body := marchallObj(t, map[string]interface{}{
		"name":             "New Admin",
		"username":         "newadmin",
		"email":            "newadmin@test.cd",
		"password":         "Tr0ub4dor&3ghi",
		"password_confirm": "Tr0ub4dor&3ghi",
		"roles":            []string{user.RoleAdmin},
	})

	t.Run("owner role required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, env.conf, admin), body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, env.conf, owner), body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created user.User
		decodeBody(t, rec, &created)
		assert.Equal(t, "newadmin", created.Username)
		assert.True(t, created.IsActive)
		assert.NotContains(t, rec.Body.String(), "password_hash") // never serialized
	})

	t.Run("duplicate username", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, env.conf, owner), body)
		env.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "username")
	})
}
