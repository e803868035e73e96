package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"twitterapi/internal/domain"
	"twitterapi/internal/validation"
	"twitterapi/pkg/logger"
)

var errStore = errors.New("store unavailable")

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testValidator() *validation.Validator {
	return validation.NewWithClock(func() time.Time { return testNow })
}

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	order  []string
	failOn string
	calls  []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) record(op string) error {
	r.calls = append(r.calls, op)
	if r.failOn == op {
		return errStore
	}
	return nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("FindByEmail"); err != nil {
		return nil, err
	}
	for _, id := range r.order {
		if u := r.users[id]; u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAll(ctx context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("FindAll"); err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Create"); err != nil {
		return err
	}
	if _, ok := r.users[user.ID]; ok {
		return domain.ErrAlreadyExists
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyRegistered
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	r.order = append(r.order, user.ID)
	return nil
}

func (r *stubUserRepo) Update(ctx context.Context, id string, fields domain.Fields) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Update"); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case domain.UserFieldEmail:
			u.Email = v.(string)
		case domain.UserFieldFirstName:
			u.FirstName = v.(string)
		case domain.UserFieldLastName:
			u.LastName = v.(string)
		case domain.UserFieldPassword:
			u.Password = v.(string)
		case domain.UserFieldCountry:
			u.Country = v.(*string)
		case domain.UserFieldBirthDate:
			u.BirthDate = v.(*domain.Date)
		case domain.UserFieldCreationAccountDate:
			u.CreationAccountDate = v.(domain.Date)
		default:
			return nil, domain.ErrUnknownField
		}
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Delete"); err != nil {
		return nil, err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return u, nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type stubTweetRepo struct {
	mu     sync.Mutex
	users  *stubUserRepo
	tweets map[string]*domain.Tweet
	failOn string
}

func newStubTweetRepo(users *stubUserRepo) *stubTweetRepo {
	return &stubTweetRepo{users: users, tweets: make(map[string]*domain.Tweet)}
}

func (r *stubTweetRepo) withAuthor(t *domain.Tweet) (*domain.Tweet, error) {
	author, err := r.users.FindByID(context.Background(), t.UserID)
	if err != nil {
		return nil, err
	}
	cp := *t
	cp.By = author
	return &cp, nil
}

func (r *stubTweetRepo) sorted(filter func(*domain.Tweet) bool) ([]*domain.Tweet, error) {
	out := make([]*domain.Tweet, 0)
	for _, t := range r.tweets {
		if filter(t) {
			tw, err := r.withAuthor(t)
			if err != nil {
				return nil, err
			}
			out = append(out, tw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubTweetRepo) FindByID(ctx context.Context, id string) (*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "FindByID" {
		return nil, errStore
	}
	t, ok := r.tweets[id]
	if !ok {
		return nil, domain.ErrTweetNotFound
	}
	return r.withAuthor(t)
}

func (r *stubTweetRepo) FindAll(ctx context.Context) ([]*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "FindAll" {
		return nil, errStore
	}
	return r.sorted(func(*domain.Tweet) bool { return true })
}

func (r *stubTweetRepo) FindByUserID(ctx context.Context, userID string) ([]*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(t *domain.Tweet) bool { return t.UserID == userID })
}

func (r *stubTweetRepo) Create(ctx context.Context, tweet *domain.Tweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "Create" {
		return errStore
	}
	if _, ok := r.tweets[tweet.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if _, err := r.users.FindByID(ctx, tweet.UserID); err != nil {
		return err
	}
	cp := *tweet
	cp.By = nil
	r.tweets[tweet.ID] = &cp
	return nil
}

func (r *stubTweetRepo) Update(ctx context.Context, id string, fields domain.Fields) (*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "Update" {
		return nil, errStore
	}
	t, ok := r.tweets[id]
	if !ok {
		return nil, domain.ErrTweetNotFound
	}
	for k, v := range fields {
		switch k {
		case domain.TweetFieldContent:
			t.Content = v.(string)
		case domain.TweetFieldUpdatedAt:
			at := v.(time.Time)
			t.UpdatedAt = &at
		default:
			return nil, domain.ErrUnknownField
		}
	}
	return r.withAuthor(t)
}

func (r *stubTweetRepo) Delete(ctx context.Context, id string) (*domain.Tweet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tweets[id]
	if !ok {
		return nil, domain.ErrTweetNotFound
	}
	out, err := r.withAuthor(t)
	if err != nil {
		return nil, err
	}
	delete(r.tweets, id)
	return out, nil
}

type stubAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
	fail bool
}

func (r *stubAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errStore
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *stubAuditRepo) FindByEntityID(ctx context.Context, entityType domain.EntityType, entityID string) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStore
	}
	out := make([]*domain.AuditLog, 0)
	for i := len(r.logs) - 1; i >= 0; i-- {
		if l := r.logs[i]; l.EntityType == entityType && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubAuditRepo) actions() []domain.ActionType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActionType, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l.Action)
	}
	return out
}

type fixture struct {
	users  *stubUserRepo
	tweets *stubTweetRepo
	audits *stubAuditRepo

	userSvc  domain.UserService
	tweetSvc *TweetService
	clock    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		users:  newStubUserRepo(),
		audits: &stubAuditRepo{},
		clock:  testNow,
	}
	f.tweets = newStubTweetRepo(f.users)

	log := logger.NewNop()
	auditSvc := NewAuditLogService(f.audits, log)
	v := testValidator()
	f.userSvc = NewUserService(f.users, auditSvc, v, log)
	f.tweetSvc = NewTweetService(f.tweets, f.users, auditSvc, v, log).
		WithClock(func() time.Time { return f.clock })
	return f
}

func registerReq(email string) *domain.UserRegister {
	country := "Chile"
	birth := domain.NewDate(1990, time.July, 4)
	return &domain.UserRegister{
		Email:               email,
		FirstName:           "Ana",
		LastName:            "Lopez",
		Password:            "supersecret",
		Country:             &country,
		BirthDate:           &birth,
		CreationAccountDate: domain.NewDate(2020, time.March, 1),
	}
}
