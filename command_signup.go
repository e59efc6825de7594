package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// MinPasswordLength is the minimum accepted password length. Wire
// Config.GetPasswordMinLength through NewService to override it.
var MinPasswordLength = 6

type SignupMessage struct {
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Password        string                `json:"password"`
	ConfirmPassword string                `json:"confirm_password"`
	Gender          string                `json:"gender"`
	OnResponse      func(*SignupResponse) `json:"-"`
}

func (m SignupMessage) Type() string { return "account.signup" }

// Validate will run validation rules
func (m SignupMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&m.Email, validation.Required, is.Email),
		validation.Field(&m.Password, validation.Required, validation.Length(MinPasswordLength, 100)),
		validation.Field(
			&m.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(m.Password)),
		),
		validation.Field(&m.Gender, validation.Required, validation.In(Genders...)),
	)
}

type SignupResponse struct {
	Account         *Account `json:"account"`
	ActivationToken string   `json:"activation_token"`
	ActivationLink  string   `json:"activation_link"`
}

type SignupHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	notifier Notifier
	baseURL  string
	logger   Logger
}

// NewSignupHandler creates a handler with sane defaults
func NewSignupHandler(repo RepositoryManager, tokens TokenService, notifier Notifier, baseURL string) *SignupHandler {
	return &SignupHandler{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		baseURL:  baseURL,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger used by the handler
func (h *SignupHandler) WithLogger(logger Logger) *SignupHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during signup")
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account := &Account{
		Name:         event.Name,
		Email:        NormalizeEmail(event.Email),
		PasswordHash: hash,
		Gender:       event.Gender,
		Role:         RoleUser,
		IsActivated:  false,
	}

	account, err = h.repo.Accounts().Create(ctx, account)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup failed")
	}

	token, err := h.tokens.Issue(account, TokenClassActivation)
	if err != nil {
		h.rollback(ctx, account)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint activation token")
	}

	link := ActivationLink(h.baseURL, token)
	subject, body := ActivationEmail(account.Name, link)

	// The create and the send are sequential, not mutually locked; the
	// compensating delete below is the consistency recovery when the
	// outbound channel rejects the message.
	if !h.notifier.Send(ctx, account.Email, subject, body) {
		h.rollback(ctx, account)
		return ErrDeliveryFailed
	}

	if event.OnResponse != nil {
		event.OnResponse(&SignupResponse{
			Account:         account.Sanitized(),
			ActivationToken: token,
			ActivationLink:  link,
		})
	}

	return nil
}

func (h *SignupHandler) rollback(ctx context.Context, account *Account) {
	if err := h.repo.Accounts().Delete(ctx, account.ID); err != nil {
		h.logger.Error("signup rollback failed, account %s may be orphaned: %v", account.ID, err)
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match", goerrors.CategoryValidation)
		}
		return nil
	}
}
