package accounts

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// AccountsControllerRoutes holds the route paths the controller mounts
type AccountsControllerRoutes struct {
	Signup        string
	Activate      string
	Login         string
	Refresh       string
	OTP           string
	PasswordReset string
	Profile       string
}

// AccountsController is the JSON transport adapter over the Service.
// It binds payloads and renders results; every rule lives in the
// handlers behind the Service.
type AccountsController struct {
	Debug        bool
	Logger       Logger
	Service      *Service
	Routes       *AccountsControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AccountsControllerOption func(*AccountsController) *AccountsController

func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Debug = debug
		return c
	}
}

func WithControllerService(service *Service) AccountsControllerOption {
	return func(c *AccountsController) *AccountsController {
		c.Service = service
		return c
	}
}

func NewAccountsController(opts ...AccountsControllerOption) *AccountsController {
	c := &AccountsController{
		Logger: defLogger{},
		Routes: &AccountsControllerRoutes{
			Signup:        "/auth/signup",
			Activate:      "/auth/activate",
			Login:         "/auth/login",
			Refresh:       "/auth/refresh",
			OTP:           "/auth/otp",
			PasswordReset: "/auth/password-reset",
			Profile:       "/user/profile",
		},
	}

	c.ErrorHandler = func(ctx router.Context, err error) error {
		return WriteError(ctx, c.Logger, err)
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing Service in accounts controller...")
	}

	return c
}

// RegisterAuthRoutes mounts the account routes on the router. The
// profile route is guarded by the access token middleware.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AccountsControllerOption) {
	controller := NewAccountsController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("auth.signup")

	app.Get(fmt.Sprintf("%s/:token", controller.Routes.Activate), controller.ActivateGet).
		SetName("auth.activate")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("auth.refresh")

	app.Post(controller.Routes.OTP, controller.OTPPost).
		SetName("auth.otp")

	app.Post(controller.Routes.PasswordReset, controller.PasswordResetPost).
		SetName("auth.password-reset")

	guard := RequireAccessToken(controller.Service.TokenService(), controller.Logger)

	app.Get(controller.Routes.Profile, guard(controller.ProfileGet)).
		SetName("user.profile")
}

func (a *AccountsController) SignupPost(ctx router.Context) error {
	payload := new(SignupMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if a.Debug {
		a.Logger.Debug("signup payload: %s", print.MaybePrettyJSON(payload))
	}

	res, err := a.Service.Signup(ctx.Context(), *payload)
	if err != nil {
		a.Logger.Error("signup error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, res)
}

func (a *AccountsController) ActivateGet(ctx router.Context) error {
	token := ctx.Param("token")

	account, err := a.Service.Activate(ctx.Context(), token)
	if err != nil {
		a.Logger.Error("activation error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"account": account,
	})
}

func (a *AccountsController) LoginPost(ctx router.Context) error {
	payload := new(LoginMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	res, err := a.Service.Login(ctx.Context(), *payload)
	if err != nil {
		a.Logger.Error("login error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

func (a *AccountsController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	res, err := a.Service.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		a.Logger.Error("token refresh error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

func (a *AccountsController) OTPPost(ctx router.Context) error {
	payload := new(RequestOTPMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	res, err := a.Service.RequestOTP(ctx.Context(), *payload)
	if err != nil {
		a.Logger.Error("otp request error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"ok":         true,
		"email":      res.Email,
		"expires_at": res.ExpiresAt,
	})
}

func (a *AccountsController) PasswordResetPost(ctx router.Context) error {
	payload := new(ResetPasswordMessage)

	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, bindError(err))
	}

	if _, err := a.Service.ResetPassword(ctx.Context(), *payload); err != nil {
		a.Logger.Error("password reset error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"ok": true,
	})
}

func (a *AccountsController) ProfileGet(ctx router.Context) error {
	claims, ok := RouterClaims(ctx, "")
	if !ok {
		return a.ErrorHandler(ctx, goerrors.New("missing token claims", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized))
	}

	account, err := a.Service.Profile(ctx.Context(), claims.UserID())
	if err != nil {
		a.Logger.Error("profile error: %v", err)
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"account": account,
	})
}

func bindError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse request body")
}
