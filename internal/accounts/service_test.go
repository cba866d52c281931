package accounts_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/veridian-id/veridian/internal/accounts"
)

type memoryAccountRepo struct {
	users  map[int64]*accounts.User
	nextID int64
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{users: make(map[int64]*accounts.User)}
}

func (r *memoryAccountRepo) FindByEmail(ctx context.Context, email string) (*accounts.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, accounts.ErrNotFound
}

func (r *memoryAccountRepo) FindByID(ctx context.Context, id int64) (*accounts.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryAccountRepo) Create(ctx context.Context, email, passwordHash string) (*accounts.User, error) {
	if _, err := r.FindByEmail(ctx, email); err == nil {
		return nil, accounts.ErrEmailTaken
	}
	r.nextID++
	u := &accounts.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       accounts.StatusPending,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (r *memoryAccountRepo) MarkEmailVerified(ctx context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return accounts.ErrNotFound
	}
	u.EmailVerified = true
	if u.Status == accounts.StatusPending {
		u.Status = accounts.StatusActive
	}
	return nil
}

func (r *memoryAccountRepo) UpdateStatus(ctx context.Context, id int64, status accounts.Status) error {
	u, ok := r.users[id]
	if !ok {
		return accounts.ErrNotFound
	}
	u.Status = status
	return nil
}

func (r *memoryAccountRepo) List(ctx context.Context, limit, offset int) ([]accounts.User, int, error) {
	var out []accounts.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *memoryAccountRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return accounts.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func seedUser(t *testing.T, repo *memoryAccountRepo, email, password string, status accounts.Status, verified bool) *accounts.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), email, string(hash))
	require.NoError(t, err)
	repo.users[user.ID].Status = status
	repo.users[user.ID].EmailVerified = verified
	return repo.users[user.ID]
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryAccountRepo()
	seedUser(t, repo, "user@example.com", "hunter2secret", accounts.StatusActive, true)
	svc := accounts.NewService(repo)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "User@Example.com ", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, "user@example.com", user.Email)

	_, err = svc.Authenticate(ctx, "user@example.com", "wrongpass")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "hunter2secret")
	require.ErrorIs(t, err, accounts.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := accounts.NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "New@Example.com", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, accounts.StatusPending, user.Status)
	require.False(t, user.EmailVerified)

	_, err = svc.Register(ctx, "new@example.com", "otherpassword")
	require.ErrorIs(t, err, accounts.ErrEmailTaken)
}

func TestEmailVerifierLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	verifier := accounts.NewEmailVerifier(client, time.Hour)
	ctx := context.Background()

	code, err := verifier.Issue(ctx, 42)
	require.NoError(t, err)

	userID, err := verifier.Confirm(ctx, code)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)

	// Codes are single use.
	_, err = verifier.Confirm(ctx, code)
	require.ErrorIs(t, err, accounts.ErrCodeInvalid)

	_, err = verifier.Confirm(ctx, "nonsense")
	require.ErrorIs(t, err, accounts.ErrCodeInvalid)
}

func TestEmailVerifierCodeExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	verifier := accounts.NewEmailVerifier(client, time.Minute)
	ctx := context.Background()

	code, err := verifier.Issue(ctx, 42)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = verifier.Confirm(ctx, code)
	require.ErrorIs(t, err, accounts.ErrCodeInvalid)
}
