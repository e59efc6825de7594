package accounts_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockAccountStore implements accounts.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Create(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccountStore) Update(ctx context.Context, account *accounts.Account) (*accounts.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountStore) SetActivated(ctx context.Context, id uuid.UUID) (*accounts.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Account), args.Error(1)
}

func (m *MockAccountStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockOneTimeCodeStore implements accounts.OneTimeCodeStore
type MockOneTimeCodeStore struct {
	mock.Mock
}

func (m *MockOneTimeCodeStore) Replace(ctx context.Context, code *accounts.OneTimeCode) (*accounts.OneTimeCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.OneTimeCode), args.Error(1)
}

func (m *MockOneTimeCodeStore) GetByEmail(ctx context.Context, email string) (*accounts.OneTimeCode, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.OneTimeCode), args.Error(1)
}

func (m *MockOneTimeCodeStore) RecordAttempt(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *MockOneTimeCodeStore) Delete(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockOneTimeCodeStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// memCodeStore is an in-memory OneTimeCodeStore for exercising the full
// attempt counting and replacement behavior against real state.
type memCodeStore struct {
	mu    sync.Mutex
	codes map[string]*accounts.OneTimeCode
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: map[string]*accounts.OneTimeCode{}}
}

func (s *memCodeStore) Replace(ctx context.Context, code *accounts.OneTimeCode) (*accounts.OneTimeCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *code
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	cp.Attempts = 0
	s.codes[cp.Email] = &cp

	out := cp
	return &out, nil
}

func (s *memCodeStore) GetByEmail(ctx context.Context, email string) (*accounts.OneTimeCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[email]
	if !ok {
		return nil, accounts.ErrOTPNotFound
	}
	out := *code
	return &out, nil
}

func (s *memCodeStore) RecordAttempt(ctx context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[email]
	if !ok {
		return 0, accounts.ErrOTPNotFound
	}
	code.Attempts++
	return code.Attempts, nil
}

func (s *memCodeStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, email)
	return nil
}

func (s *memCodeStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for email, code := range s.codes {
		if code.Expired(now) {
			delete(s.codes, email)
			n++
		}
	}
	return n, nil
}

// mockRepositoryManager bundles the mock stores behind the
// RepositoryManager interface
type mockRepositoryManager struct {
	accounts accounts.AccountStore
	otpCodes accounts.OneTimeCodeStore
}

func newMockRepositoryManager(acc accounts.AccountStore, otp accounts.OneTimeCodeStore) *mockRepositoryManager {
	return &mockRepositoryManager{accounts: acc, otpCodes: otp}
}

func (m *mockRepositoryManager) Validate() error { return nil }

func (m *mockRepositoryManager) MustValidate() {}

func (m *mockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *mockRepositoryManager) Accounts() accounts.AccountStore { return m.accounts }

func (m *mockRepositoryManager) OTPCodes() accounts.OneTimeCodeStore { return m.otpCodes }

// recordingNotifier captures sent messages and returns a scripted result
type recordingNotifier struct {
	mu   sync.Mutex
	ok   bool
	sent []sentMessage
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

func newRecordingNotifier(ok bool) *recordingNotifier {
	return &recordingNotifier{ok: ok}
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, sentMessage{To: to, Subject: subject, Body: body})
	return n.ok
}

func (n *recordingNotifier) Sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]sentMessage, len(n.sent))
	copy(out, n.sent)
	return out
}

// testConfig is a fixed Config for tests
type testConfig struct {
	activationKey string
	accessKey     string
	refreshKey    string
	activationTTL time.Duration
	accessTTL     time.Duration
	refreshTTL    time.Duration
	otpTTL        time.Duration
	otpAttempts   int
	minPassword   int
	baseURL       string
	issuer        string
	audience      []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		activationKey: "activation-secret",
		accessKey:     "access-secret",
		refreshKey:    "refresh-secret",
		activationTTL: time.Hour * 24,
		accessTTL:     time.Minute * 30,
		refreshTTL:    time.Hour * 24 * 7,
		otpTTL:        time.Minute * 10,
		otpAttempts:   3,
		minPassword:   6,
		baseURL:       "http://app.example.com",
		issuer:        "go-accounts",
		audience:      []string{"api"},
	}
}

func (c *testConfig) GetActivationSigningKey() string { return c.activationKey }

func (c *testConfig) GetAccessSigningKey() string { return c.accessKey }

func (c *testConfig) GetRefreshSigningKey() string { return c.refreshKey }

func (c *testConfig) GetActivationTokenTTL() time.Duration { return c.activationTTL }

func (c *testConfig) GetAccessTokenTTL() time.Duration { return c.accessTTL }

func (c *testConfig) GetRefreshTokenTTL() time.Duration { return c.refreshTTL }

func (c *testConfig) GetOTPTTL() time.Duration { return c.otpTTL }

func (c *testConfig) GetOTPMaxAttempts() int { return c.otpAttempts }

func (c *testConfig) GetPasswordMinLength() int { return c.minPassword }

func (c *testConfig) GetBaseURL() string { return c.baseURL }

func (c *testConfig) GetIssuer() string { return c.issuer }

func (c *testConfig) GetAudience() []string { return c.audience }

func testAccount(email string, activated bool) *accounts.Account {
	return &accounts.Account{
		ID:          uuid.New(),
		Name:        "Ana",
		Email:       email,
		Gender:      accounts.GenderFemale,
		Role:        accounts.RoleUser,
		IsActivated: activated,
	}
}
