package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepository struct {
	nextID uint
	byID   map[uint]*User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{nextID: 1, byID: make(map[uint]*User)}
}

func (f *fakeUserRepository) Create(_ context.Context, u *User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return ErrEmailAlreadyExists
		}
		if existing.Username == u.Username {
			return ErrUsernameAlreadyExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepository) ReadByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepository) ReadByID(_ context.Context, id uint) (*User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepository) Update(_ context.Context, u *User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepository) Delete(_ context.Context, id uint) error {
	delete(f.byID, id)
	return nil
}

func newTestService() (UserService, *fakeUserRepository) {
	repo := newFakeUserRepository()
	return NewUserService(repo, zap.NewNop()), repo
}

const validPassword = "hunter2!aA"

func TestCreateUserHashesPassword(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.CreateUser(context.Background(), "alice@example.com", "alice", validPassword)
	require.NoError(t, err)
	assert.NotEqual(t, validPassword, u.Password, "password must be stored hashed")
	assert.Equal(t, Member, u.Role)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name     string
		email    string
		username string
		password string
		want     error
	}{
		{"bad email", "not-an-email", "alice", validPassword, ErrInvalidEmailFormat},
		{"short username", "alice@example.com", "al", validPassword, ErrUsernameTooShort},
		{"short password", "alice@example.com", "alice", "aB1!", ErrPasswordShouldBeNCharacters},
		{"no digits", "alice@example.com", "alice", "password!!", ErrPasswordNotAlphanumeric},
		{"no special", "alice@example.com", "alice", "password12", ErrPasswordDoesNotHaveSpecialCharacter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tc.email, tc.username, tc.password)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateUser(context.Background(), "alice@example.com", "alice", validPassword)
	require.NoError(t, err)

	u, err := svc.VerifyPassword(context.Background(), "alice@example.com", validPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
}

func TestVerifyPasswordIndistinguishableFailures(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "alice@example.com", "alice", validPassword)
	require.NoError(t, err)

	_, err = svc.VerifyPassword(context.Background(), "alice@example.com", "wrong-pass1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.VerifyPassword(context.Background(), "nobody@example.com", validPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown user and wrong password must be indistinguishable")
}

func TestUpdatePasswordRehashes(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.CreateUser(context.Background(), "alice@example.com", "alice", validPassword)
	require.NoError(t, err)
	oldHash := repo.byID[created.ID].Password

	require.NoError(t, svc.UpdatePassword(context.Background(), created.ID, "newSecret9?"))
	assert.NotEqual(t, oldHash, repo.byID[created.ID].Password)

	_, err = svc.VerifyPassword(context.Background(), "alice@example.com", "newSecret9?")
	assert.NoError(t, err)
}

func TestDuplicateEmailRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), "alice@example.com", "alice", validPassword)
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), "alice@example.com", "alice2", validPassword)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}
