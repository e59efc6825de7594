package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Gender is the account's gender attribute
type Gender = string

const (
	// GenderMale male
	GenderMale Gender = "male"
	// GenderFemale female
	GenderFemale Gender = "female"
)

// Genders lists the accepted gender values
var Genders = []any{GenderMale, GenderFemale}

// Account is the account model
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	Gender        Gender     `bun:"gender,notnull" json:"gender,omitempty"`
	Role          Role       `bun:"account_role" json:"account_role,omitempty"`
	Permissions   []string   `bun:"permissions" json:"permissions,omitempty"`
	IsActivated   bool       `bun:"is_activated" json:"is_activated"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Sanitized returns a copy safe to hand back to callers. The password
// hash never leaves the service boundary.
func (a *Account) Sanitized() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	cp.PasswordHash = ""
	return &cp
}

// HasPermission checks the account's explicit permission set first and
// falls back to the permissions granted by its role.
func (a *Account) HasPermission(permission string) bool {
	if a == nil {
		return false
	}
	for _, p := range a.Permissions {
		if p == permission {
			return true
		}
	}
	return a.Role.HasPermission(permission)
}

// OTPPurpose tags what flow a one time code belongs to
type OTPPurpose = string

const (
	// OTPPurposeSignup verification codes sent right after signup
	OTPPurposeSignup OTPPurpose = "signup"
	// OTPPurposePasswordReset forgot-password codes
	OTPPurposePasswordReset OTPPurpose = "password-reset"
	// OTPPurposeLogin login challenge codes
	OTPPurposeLogin OTPPurpose = "login"
)

// OTPPurposes lists the accepted purpose values
var OTPPurposes = []any{OTPPurposeSignup, OTPPurposePasswordReset, OTPPurposeLogin}

// OneTimeCode is a numeric code bound to an email address. At most one
// live code exists per email; issuing a new one replaces the previous.
type OneTimeCode struct {
	bun.BaseModel `bun:"table:otp_codes,alias:otp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Code          string     `bun:"code,notnull" json:"-"`
	Purpose       OTPPurpose `bun:"purpose,notnull" json:"purpose,omitempty"`
	Attempts      int        `bun:"attempts" json:"attempts"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Expired reports whether the code's TTL has passed at the given instant.
func (c *OneTimeCode) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	return now.After(c.ExpiresAt)
}
