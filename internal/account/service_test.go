// Copyright (c) 2026 Userbase. All rights reserved.
// Author: thach.le.ng@gmail.com

package account_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thachln/userbase/internal/account"
	"github.com/thachln/userbase/internal/platform/apperr"
	"github.com/thachln/userbase/internal/platform/dberr"
	"github.com/thachln/userbase/internal/platform/sec"
	"github.com/thachln/userbase/pkg/uuid"
)

// # Test Doubles

// fakeRepo is an in-memory Repository that mirrors the store's contract:
// it generates ids on Create and enforces name/email uniqueness the way the
// real constraint mapping does.
type fakeRepo struct {
	accounts map[string]*account.Account // keyed by id
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{accounts: make(map[string]*account.Account)}
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*account.Account, error) {
	if acct, ok := r.accounts[id]; ok {
		copied := *acct
		return &copied, nil
	}
	return nil, dberr.ErrNotFound
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	for _, acct := range r.accounts {
		if acct.Email == email {
			copied := *acct
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (r *fakeRepo) Create(_ context.Context, acct *account.Account) error {
	for _, existing := range r.accounts {
		if existing.Name == acct.Name {
			return apperr.Duplicate("Name is already taken, kindly choose another name")
		}
		if existing.Email == acct.Email {
			return apperr.Duplicate("Email already exists, kindly try another email")
		}
	}

	acct.ID = uuid.New()
	acct.CreatedAt = time.Now()
	acct.UpdatedAt = acct.CreatedAt
	copied := *acct
	r.accounts[acct.ID] = &copied
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, accountID, newHash string) error {
	acct, ok := r.accounts[accountID]
	if !ok {
		return dberr.ErrNotFound
	}
	acct.PasswordHash = newHash
	acct.UpdatedAt = time.Now()
	return nil
}

// fakeMailer records sent messages, optionally failing every send.
type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// # Fixtures

const (
	testFrontendHost = "http://localhost:3000"
	testJWTSecret    = "service-test-secret"
)

type serviceFixture struct {
	service  *account.Service
	repo     *fakeRepo
	mail     *fakeMailer
	sessions *sec.SessionTokens
	resets   *sec.ResetTokens
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repo := newFakeRepo()
	mail := &fakeMailer{}
	sessions := sec.NewSessionTokens(testJWTSecret, time.Hour)
	resets := sec.NewResetTokens(testJWTSecret, 15*time.Minute)

	return &serviceFixture{
		service:  account.NewService(repo, mail, sessions, resets, testFrontendHost),
		repo:     repo,
		mail:     mail,
		sessions: sessions,
		resets:   resets,
	}
}

func (f *serviceFixture) register(t *testing.T, name, email, password string) string {
	t.Helper()

	token, err := f.service.Register(context.Background(), account.RegisterInput{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: password,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return token
}

// # Registration

/*
TestService_Register verifies that a successful registration persists the
account, hashes the password, and issues a session token for the new id.
*/
func TestService_Register(t *testing.T) {
	f := newServiceFixture(t)

	token := f.register(t, "thach", "thach@example.com", "secret123")

	// The token must decode back to the stored account's id.
	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, "thach", stored.Name)
	assert.Equal(t, "thach@example.com", stored.Email)

	// Password must be stored hashed, never plain.
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret123", stored.PasswordHash))
}

/*
TestService_Register_TrimsIdentity verifies that name and email are stored
trimmed, so a padded registration still logs in with the canonical address
and cannot coexist with its trimmed twin.
*/
func TestService_Register_TrimsIdentity(t *testing.T) {
	f := newServiceFixture(t)

	token, err := f.service.Register(context.Background(), account.RegisterInput{
		Name:                 "  thach  ",
		Email:                " thach@example.com ",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Stored under the canonical values.
	stored, err := f.repo.FindByEmail(context.Background(), "thach@example.com")
	require.NoError(t, err)
	assert.Equal(t, "thach", stored.Name)
	assert.Equal(t, "thach@example.com", stored.Email)

	// Canonical and padded logins both resolve the same account.
	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "secret123",
	})
	assert.NoError(t, err)

	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    " thach@example.com ",
		Password: "secret123",
	})
	assert.NoError(t, err)

	// A padded re-registration is the same identity, not a new one.
	_, err = f.service.Register(context.Background(), account.RegisterInput{
		Name:                 "someone-else",
		Email:                "thach@example.com  ",
		Password:             "other456",
		PasswordConfirmation: "other456",
	})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "DUPLICATE_KEY", ae.Code)
}

/*
TestService_Register_DuplicateEmail verifies the duplicate gate returns a
400 duplicate-key error, not a conflict or a 500.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "thach", "thach@example.com", "secret123")

	_, err := f.service.Register(context.Background(), account.RegisterInput{
		Name:                 "someone-else",
		Email:                "thach@example.com",
		Password:             "other456",
		PasswordConfirmation: "other456",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "DUPLICATE_KEY", ae.Code)
	assert.Equal(t, 400, ae.HTTPStatus)
	assert.Equal(t, "Email already exists, kindly try another email", ae.Message)
}

/*
TestService_Register_GateOrder verifies that when the email is taken AND the
passwords mismatch, the duplicate error wins (email gate runs first).
*/
func TestService_Register_GateOrder(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "thach", "thach@example.com", "secret123")

	_, err := f.service.Register(context.Background(), account.RegisterInput{
		Name:                 "someone-else",
		Email:                "thach@example.com",
		Password:             "secret123",
		PasswordConfirmation: "does-not-match",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "DUPLICATE_KEY", ae.Code)
}

/*
TestService_Register_PasswordMismatch verifies the confirmation gate.
*/
func TestService_Register_PasswordMismatch(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Register(context.Background(), account.RegisterInput{
		Name:                 "thach",
		Email:                "thach@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret124",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, account.FieldPasswordConfirmation, ae.Details[0].Field)
}

// # Authentication

/*
TestService_Login verifies the credential check and token issuance.
*/
func TestService_Login(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "thach", "thach@example.com", "secret123")

	token, err := f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, "thach@example.com", stored.Email)
}

/*
TestService_Login_UniformFailure verifies that a wrong password and an
unknown email produce byte-identical errors (no email enumeration).
*/
func TestService_Login_UniformFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "thach", "thach@example.com", "secret123")

	_, wrongPassErr := f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "wrong-password",
	})
	_, unknownEmailErr := f.service.Login(context.Background(), account.LoginInput{
		Email:    "nobody@example.com",
		Password: "secret123",
	})

	require.Error(t, wrongPassErr)
	require.Error(t, unknownEmailErr)

	wrongAE := apperr.As(wrongPassErr)
	unknownAE := apperr.As(unknownEmailErr)
	require.NotNil(t, wrongAE)
	require.NotNil(t, unknownAE)

	assert.Equal(t, 401, wrongAE.HTTPStatus)
	assert.Equal(t, wrongAE.Code, unknownAE.Code)
	assert.Equal(t, wrongAE.Message, unknownAE.Message)
	assert.Equal(t, wrongAE.HTTPStatus, unknownAE.HTTPStatus)
}

// # Password Management

/*
TestService_ChangePassword verifies the authenticated password swap.
*/
func TestService_ChangePassword(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "thach", "thach@example.com", "secret123")

	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	err = f.service.ChangePassword(context.Background(), accountID, "newpass789", "newpass789")
	require.NoError(t, err)

	// Old password stops working, new one logs in.
	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "secret123",
	})
	assert.Error(t, err)

	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "newpass789",
	})
	assert.NoError(t, err)
}

/*
TestService_ChangePassword_Mismatch verifies the confirmation gate runs
before any write.
*/
func TestService_ChangePassword_Mismatch(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "thach", "thach@example.com", "secret123")

	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	err = f.service.ChangePassword(context.Background(), accountID, "newpass789", "different")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)

	// Original password still valid.
	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "secret123",
	})
	assert.NoError(t, err)
}

// # Password Recovery

/*
TestService_RequestPasswordReset verifies the reset email carries a link with
the account id and a token that verifies against that account.
*/
func TestService_RequestPasswordReset(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "thach", "thach@example.com", "secret123")

	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	err = f.service.RequestPasswordReset(context.Background(), "thach@example.com")
	require.NoError(t, err)

	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, "thach@example.com", msg.to)

	// The body must contain the frontend link with id and token path segments.
	prefix := fmt.Sprintf("%s/reset-password/%s/", testFrontendHost, accountID)
	idx := strings.Index(msg.body, prefix)
	require.GreaterOrEqual(t, idx, 0, "reset link missing from email body")

	rest := msg.body[idx+len(prefix):]
	resetToken := strings.Fields(rest)[0]
	assert.NoError(t, f.resets.Verify(resetToken, accountID))
}

/*
TestService_RequestPasswordReset_UnknownEmail verifies the 400 response for
an unregistered address.
*/
func TestService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	f := newServiceFixture(t)

	err := f.service.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 400, ae.HTTPStatus)
	assert.Equal(t, "Email doesn't exist", ae.Message)
	assert.Empty(t, f.mail.sent)
}

/*
TestService_RequestPasswordReset_MailerDown verifies that a transport failure
surfaces as a 500 rather than a silent success.
*/
func TestService_RequestPasswordReset_MailerDown(t *testing.T) {
	f := newServiceFixture(t)
	f.register(t, "thach", "thach@example.com", "secret123")
	f.mail.fail = true

	err := f.service.RequestPasswordReset(context.Background(), "thach@example.com")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 500, ae.HTTPStatus)
}

/*
TestService_ConfirmPasswordReset verifies the full happy path: request a
reset, confirm with the emailed token, then log in with the new password.
*/
func TestService_ConfirmPasswordReset(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "thach", "thach@example.com", "secret123")

	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	resetToken, err := f.resets.Issue(accountID)
	require.NoError(t, err)

	err = f.service.ConfirmPasswordReset(context.Background(), accountID, resetToken, "brandnew99", "brandnew99")
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "brandnew99",
	})
	assert.NoError(t, err)

	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "thach@example.com",
		Password: "secret123",
	})
	assert.Error(t, err)
}

/*
TestService_ConfirmPasswordReset_CrossAccount verifies that a token issued
for one account cannot reset another account's password.
*/
func TestService_ConfirmPasswordReset_CrossAccount(t *testing.T) {
	f := newServiceFixture(t)
	tokenA := f.register(t, "alice", "alice@example.com", "secret123")
	tokenB := f.register(t, "bob", "bob@example.com", "secret456")

	accountA, err := f.sessions.Verify(tokenA)
	require.NoError(t, err)
	accountB, err := f.sessions.Verify(tokenB)
	require.NoError(t, err)

	resetForA, err := f.resets.Issue(accountA)
	require.NoError(t, err)

	err = f.service.ConfirmPasswordReset(context.Background(), accountB, resetForA, "hijacked1", "hijacked1")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_TOKEN", ae.Code)
	assert.Equal(t, 400, ae.HTTPStatus)

	// Bob's password is untouched.
	_, err = f.service.Login(context.Background(), account.LoginInput{
		Email:    "bob@example.com",
		Password: "secret456",
	})
	assert.NoError(t, err)
}

/*
TestService_ConfirmPasswordReset_UnknownAccount verifies that a reset link
with a non-existent account id fails with the same uniform message as a bad
token.
*/
func TestService_ConfirmPasswordReset_UnknownAccount(t *testing.T) {
	f := newServiceFixture(t)

	ghostID := uuid.New()
	resetToken, err := f.resets.Issue(ghostID)
	require.NoError(t, err)

	err = f.service.ConfirmPasswordReset(context.Background(), ghostID, resetToken, "newpass12", "newpass12")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_TOKEN", ae.Code)
	assert.Equal(t, "Invalid or expired reset link", ae.Message)
}

// # Identity Resolution

/*
TestService_ResolveAccount verifies the password-free account view used by
the auth middleware.
*/
func TestService_ResolveAccount(t *testing.T) {
	f := newServiceFixture(t)
	token := f.register(t, "thach", "thach@example.com", "secret123")

	accountID, err := f.sessions.Verify(token)
	require.NoError(t, err)

	user, err := f.service.ResolveAccount(context.Background(), accountID)
	require.NoError(t, err)

	assert.Equal(t, accountID, user.ID)
	assert.Equal(t, "thach", user.Name)
	assert.Equal(t, "thach@example.com", user.Email)
}

/*
TestService_ResolveAccount_Missing verifies the lookup error for a deleted
or never-existing id.
*/
func TestService_ResolveAccount_Missing(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.ResolveAccount(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}
