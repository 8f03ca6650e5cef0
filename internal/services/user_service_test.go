package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/askpdf-dev/askpdf/internal/core"
	db "github.com/askpdf-dev/askpdf/internal/core/database"
)

func TestSignupHashesPassword(t *testing.T) {
	svc := NewUserService(db.NewMemClient())

	user, err := svc.Signup(context.Background(), "Ada", "Ada@Example.com", "s3cret-pass")
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestSignupValidation(t *testing.T) {
	svc := NewUserService(db.NewMemClient())
	ctx := context.Background()

	var validation *core.ValidationError

	_, err := svc.Signup(ctx, "Ada", "not-an-email", "s3cret-pass")
	require.ErrorAs(t, err, &validation)

	_, err = svc.Signup(ctx, "Ada", "ada@example.com", "short")
	require.ErrorAs(t, err, &validation)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewUserService(db.NewMemClient())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Other", "ADA@example.com", "another-pass")
	var validation *core.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestLogin(t *testing.T) {
	svc := NewUserService(db.NewMemClient())
	ctx := context.Background()

	created, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	var validation *core.ValidationError
	_, err = svc.Login(ctx, "ada@example.com", "wrong-pass")
	require.ErrorAs(t, err, &validation)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	require.ErrorAs(t, err, &validation)
}
