package auth_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"recipepic.dev/recipe-pic-gen/internal/auth"
	"recipepic.dev/recipe-pic-gen/internal/config"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	config.AppConfig.SessionSecret = "test-session-secret"

	token, err := auth.GenerateAccessToken()
	gt.NoError(t, err)
	gt.NoError(t, auth.ValidateAccessToken(token))
}

func TestAccessTokenTampered(t *testing.T) {
	config.AppConfig.SessionSecret = "test-session-secret"

	token, err := auth.GenerateAccessToken()
	gt.NoError(t, err)

	gt.Error(t, auth.ValidateAccessToken(token+"x"))
	gt.Error(t, auth.ValidateAccessToken("1"))
	gt.Error(t, auth.ValidateAccessToken(""))
}

func TestAccessTokenWrongSecret(t *testing.T) {
	config.AppConfig.SessionSecret = "test-session-secret"
	token, err := auth.GenerateAccessToken()
	gt.NoError(t, err)

	config.AppConfig.SessionSecret = "another-secret"
	gt.Error(t, auth.ValidateAccessToken(token))
}
