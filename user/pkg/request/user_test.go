package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginMarshalMasksPassword(t *testing.T) {
	expectedMap := map[string]string{"email": "email", "password": "***"}
	expected, _ := json.Marshal(expectedMap)
	loginReq := Login{Email: "email", Password: "password"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "password", loginReq.Password)
}

func TestRegisterMarshalMasksPassword(t *testing.T) {
	expectedMap := map[string]string{
		"name":     "jane",
		"email":    "jane@jewelify.test",
		"password": "***",
	}
	expected, _ := json.Marshal(expectedMap)
	registerReq := Register{
		Name:     "jane",
		Email:    "jane@jewelify.test",
		Password: "password",
	}

	actual, _ := json.Marshal(registerReq)

	assert.JSONEq(t, string(expected), string(actual))
	assert.EqualValues(t, "password", registerReq.Password)
}
