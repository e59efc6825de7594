package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// ClaimsContextKey is where RequireAccessToken stores the verified
// claims in the router context
const ClaimsContextKey = "claims"

const bearerScheme = "Bearer"

// StatusForError maps a rich error to an HTTP status code. Errors that
// carry an explicit code keep it; otherwise the category decides.
func StatusForError(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryOperation:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// WriteError renders a rich error as the JSON error envelope
func WriteError(ctx router.Context, logger Logger, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	if logger != nil && len(richErr.Metadata) > 0 {
		logger.Debug("request error metadata: %s", print.MaybePrettyJSON(richErr.Metadata))
	}

	status := StatusForError(richErr)

	body := map[string]any{
		"message": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["text_code"] = richErr.TextCode
	}
	body["category"] = richErr.Category

	return ctx.JSON(status, map[string]any{"error": body})
}

// ExtractBearerToken pulls the raw token from the Authorization header
func ExtractBearerToken(ctx router.Context) (string, error) {
	return ParseBearerToken(ctx.GetString(router.HeaderAuthorization, ""))
}

// ParseBearerToken validates the Authorization header shape. The scheme
// must be followed by a space, "BearerX..." is not a bearer credential.
func ParseBearerToken(header string) (string, error) {
	l := len(bearerScheme)

	if len(header) > l+1 && strings.EqualFold(header[:l], bearerScheme) && header[l] == ' ' {
		if token := strings.TrimSpace(header[l+1:]); token != "" {
			return token, nil
		}
	}

	return "", goerrors.New("missing or malformed authorization header", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeTokenMalformed)
}

// RequireAccessToken guards a route with access token verification. The
// verified claims are stored in the router context under
// ClaimsContextKey and propagated to the standard context for handlers
// that only see a context.Context.
func RequireAccessToken(tokens TokenService, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := ExtractBearerToken(ctx)
			if err != nil {
				return WriteError(ctx, logger, err)
			}

			claims, err := tokens.Validate(raw, TokenClassAccess)
			if err != nil {
				logger.Debug("access token rejected: %v", err)
				return WriteError(ctx, logger, err)
			}

			ctx.Locals(ClaimsContextKey, claims)
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			return ctx.Next()
		}
	}
}
