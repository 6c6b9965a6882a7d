package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-registry-api/internal/models"
	"github.com/noah-isme/school-registry-api/internal/validation"
	appErrors "github.com/noah-isme/school-registry-api/pkg/errors"
)

type mockAccountRepo struct {
	accounts map[string]*models.Account
	created  []*models.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: map[string]*models.Account{}}
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = "acc-" + account.Email
	}
	m.accounts[account.Email] = account
	m.created = append(m.created, account)
	return nil
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, ok := m.accounts[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return account, nil
}

func newAuthService(repo *mockAccountRepo) *AuthService {
	return NewAuthService(repo, validation.New(), nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "school-registry-api",
	})
}

func TestAuthServiceRegisterIssuesValidToken(t *testing.T) {
	repo := newMockAccountRepo()
	svc := newAuthService(repo)

	token, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Admin",
		Email:    "Admin@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	// email is normalised before storage
	require.Len(t, repo.created, 1)
	assert.Equal(t, "admin@example.com", repo.created[0].Email)
	assert.NotEqual(t, "secret1", repo.created[0].PasswordHash)

	claims, err := svc.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "Admin", claims.Name)
	assert.Equal(t, models.TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockAccountRepo()
	repo.accounts["admin@example.com"] = &models.Account{ID: "acc-1", Email: "admin@example.com"}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "secret1",
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthService(newMockAccountRepo())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "not-an-email",
		Password: "123",
	})
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Validation failed", appErr.Message)
	// one message per violated rule: name, email, password
	assert.Len(t, appErr.Details, 3)
}

func TestAuthServiceLoginIndistinguishableFailures(t *testing.T) {
	repo := newMockAccountRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.accounts["admin@example.com"] = &models.Account{
		ID:           "acc-1",
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
	}
	svc := newAuthService(repo)

	_, unknownErr := svc.Login(context.Background(), models.LoginRequest{
		Email: "nobody@example.com", Password: "correct-pw",
	})
	_, wrongPwErr := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@example.com", Password: "wrong-pw",
	})

	unknown := appErrors.FromError(unknownErr)
	wrongPw := appErrors.FromError(wrongPwErr)
	require.NotNil(t, unknown)
	require.NotNil(t, wrongPw)
	assert.Equal(t, 401, unknown.Status)
	assert.Equal(t, 401, wrongPw.Status)
	assert.Equal(t, unknown.Message, wrongPw.Message)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockAccountRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.accounts["admin@example.com"] = &models.Account{
		ID:           "acc-1",
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
	}
	svc := newAuthService(repo)

	token, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@example.com", Password: "correct-pw",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(newMockAccountRepo())

	_, err := svc.ValidateToken("not.a.jwt")
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := newAuthService(newMockAccountRepo())
	token, err := issuer.Register(context.Background(), models.RegisterRequest{
		Name: "Admin", Email: "a@b.com", Password: "secret1",
	})
	require.NoError(t, err)

	verifier := NewAuthService(newMockAccountRepo(), validation.New(), nil, AuthConfig{
		Secret: "other-secret", Expiration: time.Hour,
	})
	_, err = verifier.ValidateToken(token.Token)
	require.Error(t, err)
}
