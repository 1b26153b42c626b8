package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobboardhq/job-board-api/internal/mailer"
	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/repository"
)

// In-memory repository fakes. They hold just enough state to observe the
// multi-step flows (rotation, code consumption) end to end.

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	stored := *user
	r.users[user.ID] = &stored

	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}

	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: make(map[string]*model.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) CreateToken(_ context.Context, token *model.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	stored := *token
	r.tokens[token.JTI] = &stored
	return nil
}

func (r *fakeRefreshTokenRepo) GetTokenByJTI(_ context.Context, jti string) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[jti]
	if !ok {
		return nil, repository.ErrNotFound
	}

	copied := *token
	return &copied, nil
}

// RevokeTokenByJTI mirrors the compare-and-set of the postgres repository: an
// absent or already revoked token reports ErrNotFound.
func (r *fakeRefreshTokenRepo) RevokeTokenByJTI(_ context.Context, jti string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[jti]
	if !ok || token.RevokedAt != nil {
		return repository.ErrNotFound
	}

	now := time.Now()
	token.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) activeCount(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			count++
		}
	}

	return count
}

type fakeResetCodeRepo struct {
	codes map[uuid.UUID]*model.PasswordResetCode
}

func newFakeResetCodeRepo() *fakeResetCodeRepo {
	return &fakeResetCodeRepo{codes: make(map[uuid.UUID]*model.PasswordResetCode)}
}

func (r *fakeResetCodeRepo) CreateCode(
	_ context.Context,
	code *model.PasswordResetCode,
) (*model.PasswordResetCode, error) {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	code.CreatedAt = time.Now()
	code.UpdatedAt = code.CreatedAt

	stored := *code
	r.codes[code.ID] = &stored

	return code, nil
}

func (r *fakeResetCodeRepo) GetActiveCode(
	_ context.Context,
	userID uuid.UUID,
	code string,
) (*model.PasswordResetCode, error) {
	for _, stored := range r.codes {
		if stored.UserID == userID && stored.Code == code && !stored.Used && time.Now().Before(stored.ExpiresAt) {
			copied := *stored
			return &copied, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r *fakeResetCodeRepo) MarkCodeAsUsed(_ context.Context, id uuid.UUID) error {
	code, ok := r.codes[id]
	if !ok {
		return repository.ErrNotFound
	}

	code.Used = true
	return nil
}

func (r *fakeResetCodeRepo) InvalidateUserCodes(_ context.Context, userID uuid.UUID) error {
	for _, code := range r.codes {
		if code.UserID == userID && !code.Used {
			code.Used = true
		}
	}

	return nil
}

func (r *fakeResetCodeRepo) DeleteExpiredCodes(_ context.Context) (int64, error) {
	var deleted int64
	for id, code := range r.codes {
		if time.Now().After(code.ExpiresAt) {
			delete(r.codes, id)
			deleted++
		}
	}

	return deleted, nil
}

func (r *fakeResetCodeRepo) activeForUser(userID uuid.UUID) []*model.PasswordResetCode {
	var active []*model.PasswordResetCode
	for _, code := range r.codes {
		if code.UserID == userID && !code.Used && time.Now().Before(code.ExpiresAt) {
			active = append(active, code)
		}
	}

	return active
}

type fakeJobRepo struct {
	jobs        []*model.Job
	companyName string
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{companyName: "Acme Corp"}
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *model.Job) (*model.Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt

	stored := *job
	r.jobs = append([]*model.Job{&stored}, r.jobs...)

	return job, nil
}

func (r *fakeJobRepo) GetJob(_ context.Context, id uuid.UUID) (*model.Job, error) {
	for _, job := range r.jobs {
		if job.ID == id {
			copied := *job
			copied.CompanyName = r.companyName
			return &copied, nil
		}
	}

	return nil, repository.ErrNotFound
}

func (r *fakeJobRepo) ListJobs(_ context.Context) ([]*model.Job, error) {
	out := make([]*model.Job, len(r.jobs))
	copy(out, r.jobs)
	return out, nil
}

func (r *fakeJobRepo) ListJobsByCompany(
	_ context.Context,
	companyID uuid.UUID,
	limit, offset uint64,
) ([]*model.Job, error) {
	var owned []*model.Job
	for _, job := range r.jobs {
		if job.CompanyID == companyID {
			owned = append(owned, job)
		}
	}

	if offset >= uint64(len(owned)) {
		return nil, nil
	}

	owned = owned[offset:]
	if uint64(len(owned)) > limit {
		owned = owned[:limit]
	}

	return owned, nil
}

func (r *fakeJobRepo) CountJobsByCompany(_ context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	for _, job := range r.jobs {
		if job.CompanyID == companyID {
			count++
		}
	}

	return count, nil
}

type fakeMailSender struct {
	sent    []mailer.Email
	sendErr error
}

func (m *fakeMailSender) Send(_ context.Context, email mailer.Email) error {
	if m.sendErr != nil {
		return m.sendErr
	}

	m.sent = append(m.sent, email)
	return nil
}
