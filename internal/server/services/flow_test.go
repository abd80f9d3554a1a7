package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otpInMail = regexp.MustCompile(`\b(\d{6})$`)

func TestRegisterVerifyLogin(t *testing.T) {
	ctx := context.Background()
	f := newRegFixture(t, "482913")
	authSvc := NewAuthService(nil, &fakeRepoManager{u: f.users}, testConfig(), logging.Nop{})

	token, err := f.svc.Register(ctx, aliceInput())
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	m := otpInMail.FindStringSubmatch(f.mailer.sent[0].body)
	require.Len(t, m, 2)

	require.NoError(t, f.svc.Verify(ctx, token, m[1]))

	res, err := authSvc.Login(ctx, "a@x.io", "pw1")
	require.NoError(t, err)

	id, err := authSvc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user", id.Role)
	assert.Equal(t, "a@x.io", id.Email)
	assert.Equal(t, "1", id.Subject)
}
