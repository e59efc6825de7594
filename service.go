package accounts

import "context"

// Service bundles the per-operation handlers behind one facade. The
// HTTP controller and any other transport adapter talk to this type;
// handlers stay independently constructible for tests.
type Service struct {
	config   Config
	repo     RepositoryManager
	tokens   TokenService
	otp      *OTPStore
	notifier Notifier
	logger   Logger

	signup        *SignupHandler
	activate      *ActivateHandler
	login         *LoginHandler
	refresh       *RefreshHandler
	requestOTP    *RequestOTPHandler
	resetPassword *ResetPasswordHandler
	profile       *ProfileHandler
}

// NewService wires the handlers from the given configuration and
// repository manager. Pass nil for notifier to fall back to the logging
// notifier.
func NewService(cfg Config, repo RepositoryManager, notifier Notifier) *Service {
	logger := defLogger{}

	if min := cfg.GetPasswordMinLength(); min > 0 {
		MinPasswordLength = min
	}

	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	tokens := NewTokenService(cfg, logger)
	otp := NewOTPStore(repo.OTPCodes(), cfg)

	return &Service{
		config:   cfg,
		repo:     repo,
		tokens:   tokens,
		otp:      otp,
		notifier: notifier,
		logger:   logger,

		signup:        NewSignupHandler(repo, tokens, notifier, cfg.GetBaseURL()),
		activate:      NewActivateHandler(repo, tokens),
		login:         NewLoginHandler(repo, tokens),
		refresh:       NewRefreshHandler(repo, tokens),
		requestOTP:    NewRequestOTPHandler(otp, notifier),
		resetPassword: NewResetPasswordHandler(repo, otp),
		profile:       NewProfileHandler(repo),
	}
}

// WithLogger propagates the logger to every handler
func (s *Service) WithLogger(logger Logger) *Service {
	if logger == nil {
		return s
	}

	s.logger = logger
	s.otp.WithLogger(logger)
	s.signup.WithLogger(logger)
	s.activate.WithLogger(logger)
	s.login.WithLogger(logger)
	s.refresh.WithLogger(logger)
	s.requestOTP.WithLogger(logger)
	s.resetPassword.WithLogger(logger)
	s.profile.WithLogger(logger)

	return s
}

// TokenService exposes the token service for middleware wiring
func (s *Service) TokenService() TokenService {
	return s.tokens
}

// StartOTPReaper launches the background sweep for expired codes
func (s *Service) StartOTPReaper(ctx context.Context) {
	s.otp.StartReaper(ctx, s.config.GetOTPTTL())
}

func (s *Service) Signup(ctx context.Context, msg SignupMessage) (*SignupResponse, error) {
	var out *SignupResponse
	msg.OnResponse = func(res *SignupResponse) { out = res }

	if err := s.signup.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Activate(ctx context.Context, token string) (*Account, error) {
	var out *Account
	msg := ActivateMessage{
		Token:      token,
		OnResponse: func(account *Account) { out = account },
	}

	if err := s.activate.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Login(ctx context.Context, msg LoginMessage) (*LoginResponse, error) {
	var out *LoginResponse
	msg.OnResponse = func(res *LoginResponse) { out = res }

	if err := s.login.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out *RefreshResponse
	msg := RefreshMessage{
		RefreshToken: refreshToken,
		OnResponse:   func(res *RefreshResponse) { out = res },
	}

	if err := s.refresh.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RequestOTP(ctx context.Context, msg RequestOTPMessage) (*RequestOTPResponse, error) {
	var out *RequestOTPResponse
	msg.OnResponse = func(res *RequestOTPResponse) { out = res }

	if err := s.requestOTP.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ResetPassword(ctx context.Context, msg ResetPasswordMessage) (*Account, error) {
	var out *Account
	msg.OnResponse = func(account *Account) { out = account }

	if err := s.resetPassword.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Profile(ctx context.Context, accountID string) (*Account, error) {
	var out *Account
	msg := ProfileMessage{
		AccountID:  accountID,
		OnResponse: func(account *Account) { out = account },
	}

	if err := s.profile.Execute(ctx, msg); err != nil {
		return nil, err
	}
	return out, nil
}
