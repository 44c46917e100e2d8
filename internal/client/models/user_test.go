package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_IsAdmin(t *testing.T) {
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Alice A.", (&User{Username: "alice", Name: "Alice A."}).DisplayName())
	assert.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
}

func TestUser_CloneIsIndependent(t *testing.T) {
	u := &User{ID: 1, Username: "alice"}
	c := u.Clone()
	c.Username = "bob"
	assert.Equal(t, "alice", u.Username)
}

func TestUser_JSONFieldNames(t *testing.T) {
	b, err := json.Marshal(User{ID: 7, Username: "op", Email: "op@roadwatch.io", Name: "Operator", PhoneNumber: "+14155552671", Role: RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"username":"op","email":"op@roadwatch.io","name":"Operator","phoneNumber":"+14155552671","role":"ADMIN"}`, string(b))
}

func TestEnvelope_SucceededAndReason(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"username taken"}`), &env))
	assert.False(t, env.Succeeded())
	assert.Equal(t, "username taken", env.Reason())

	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"message":"ok"}`), &env))
	assert.True(t, env.Succeeded())
	assert.Equal(t, "ok", env.Reason())
}

func TestRegistrationProfile_ConfirmationNotSerialized(t *testing.T) {
	b, err := json.Marshal(RegistrationProfile{Username: "u", Password: "p4ssword", PasswordConfirmation: "p4ssword"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "Confirmation")
}
