package validator_test

import (
	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"testing"
)

func TestSimplestr(t *testing.T) {
	testCases := []struct {
		Str string `validate:"required"`
		Err bool
	}{
		{
			Str: "",
			Err: true,
		},
		{
			Str: "abc",
			Err: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Str, func(t *testing.T) {
			err := validator.Validate(testCase)
			if !testCase.Err {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
		})
	}
}

func TestDiscordWebhookTag(t *testing.T) {
	type req struct {
		URL string `validate:"discordwebhook"`
	}

	type reqRequired struct {
		URL string `validate:"required,discordwebhook"`
	}

	assert.NoError(t, validator.Validate(req{URL: ""}))
	assert.NoError(t, validator.Validate(req{URL: "https://discord.com/api/webhooks/12/tok-en"}))
	assert.Error(t, validator.Validate(req{URL: "https://example.com/api/webhooks/12/token"}))

	assert.Error(t, validator.Validate(reqRequired{URL: ""}))
	assert.NoError(t, validator.Validate(reqRequired{URL: "https://discord.com/api/webhooks/12/token"}))
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, validator.Validate(nil))
}

func TestVar(t *testing.T) {
	assert.NoError(t, validator.Var("abc", "required,alphanum"))
	assert.Error(t, validator.Var("a-b", "required,alphanum"))
}
