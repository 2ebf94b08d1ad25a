package flows

import (
	"regexp"

	"github.com/Its-donkey/formwire/internal/ui/submit"
)

// Reset password actions carried by the form's buttons.
const (
	ActionSendCode    = "send_code"
	ActionVerifyCode  = "verify_code"
	ActionSetPassword = "set_password"
)

// Profile actions.
const (
	ActionUpdateUsername = "update_username"
	ActionUpdateEmail    = "update_email"
	ActionUpdatePassword = "update_password"
	ActionDeleteAccount  = "delete_account"
)

const passwordMismatch = "Passwords do not match."

var verificationCodePattern = regexp.MustCompile(`\d{6}`)

// Login signs a user in. The server answers with a message and a redirect.
func Login() submit.Options {
	return submit.Options{
		Validate: submit.Native(""),
		BusyText: "Signing in...",
		IdleText: "Sign In",
	}
}

// Register creates an account.
func Register() submit.Options {
	return submit.Options{
		Validate: submit.All(
			submit.Native(""),
			submit.Match("password", "confirm_password", passwordMismatch),
		),
		BusyText: "Creating Account...",
		IdleText: "Create Account",
	}
}

// CodeView shows the verification code step of the reset password form.
type CodeView interface {
	ShowCode(code string)
	RevealVerification()
}

// ExtractVerificationCode returns the first six-digit run in message.
func ExtractVerificationCode(message string) (string, bool) {
	code := verificationCodePattern.FindString(message)
	return code, code != ""
}

// ResetPassword drives the multi-step reset form. Which step runs is decided by
// the button that submitted it; a submission without one verifies the code.
func ResetPassword(view CodeView) submit.Options {
	return submit.Options{
		Validate: submit.All(
			submit.Native(""),
			submit.ForAction(ActionSetPassword, submit.Match("new_password", "confirm_password", passwordMismatch)),
		),
		BusyText: "Processing...",
		OnSuccess: func(resp submit.Response) {
			if resetAction(resp.Action) != ActionSendCode || view == nil {
				return
			}
			if code, ok := ExtractVerificationCode(resp.Message); ok {
				view.ShowCode(code)
			}
			view.RevealVerification()
		},
	}
}

func resetAction(a submit.PendingAction) string {
	if a.Name == "action" && a.String() != "" {
		return a.String()
	}
	return ActionVerifyCode
}

// Profile handles the account settings form, one button per action.
func Profile() submit.Options {
	return submit.Options{
		Validate: submit.All(
			submit.Native(""),
			submit.ForAction(ActionUpdatePassword, submit.Match("new_password", "confirm_password", passwordMismatch)),
		),
		BusyText: "Saving...",
	}
}
