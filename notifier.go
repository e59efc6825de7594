package accounts

import (
	"context"
	"fmt"
)

// defNotifier logs the message instead of delivering it. Real delivery
// transports (SMTP, SES, etc.) live in the consuming application; they
// only need to satisfy Notifier and normalize every transport failure
// to false.
type defNotifier struct {
	logger Logger
}

// NewLogNotifier returns a Notifier that prints messages to the logger
func NewLogNotifier(logger Logger) Notifier {
	if logger == nil {
		logger = defLogger{}
	}
	return defNotifier{logger: logger}
}

func (n defNotifier) Send(ctx context.Context, to, subject, body string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	n.logger.Info("====== SENDING EMAIL NOTIFICATION =======")
	n.logger.Info("to: %s", to)
	n.logger.Info("subject: %s", subject)
	n.logger.Info("body: %s", body)
	return true
}

// ActivationEmail renders the signup activation message
func ActivationEmail(name, link string) (subject, body string) {
	subject = "Activate your account"
	body = fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Thank you for signing up. Please activate your account by clicking the link below:</p>
<p><a href="%s">Activate Account</a></p>
<p>If the link doesn't work, copy and paste it in your browser:</p>
<p>%s</p>`, name, link, link)
	return subject, body
}

// OTPEmail renders the one time code message for a given purpose
func OTPEmail(code string, purpose OTPPurpose) (subject, body string) {
	switch purpose {
	case OTPPurposePasswordReset:
		subject = "Your password reset code"
	case OTPPurposeLogin:
		subject = "Your login code"
	default:
		subject = "Your verification code"
	}

	body = fmt.Sprintf(`<p>Your verification code is:</p>
<h2>%s</h2>
<p>The code expires in a few minutes. If you did not request it, you can ignore this message.</p>`, code)
	return subject, body
}

// ActivationLink builds the link embedded in activation emails
func ActivationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/auth/activate/%s", baseURL, token)
}
