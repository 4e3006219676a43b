package mailer

import (
	"bytes"
	"text/template"
	"time"
)

// OTPEmailSubject is the subject line of verification emails.
const OTPEmailSubject = "Verify your email address"

// OTPEmailParams is passed as data when executing the OTP email template.
type OTPEmailParams struct {
	Username   string
	Code       string
	Expiration time.Duration
}

const otpEmailTemplate = `Hi {{.Username}},

Your verification code is:

{{.Code}}

The code is valid for {{printf "%.f" .Expiration.Minutes}} minutes.

If you did not create an account, you can ignore this email.
`

var otpEmail = template.Must(template.New("otp").Parse(otpEmailTemplate))

// RenderOTPEmail builds the verification message for one recipient.
func RenderOTPEmail(to string, p OTPEmailParams) (Message, error) {
	var buf bytes.Buffer
	if err := otpEmail.Execute(&buf, p); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: OTPEmailSubject, Body: buf.String()}, nil
}
