package services

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Dias221467/shadowmeet/pkg/email"
)

func otpMessage(to, code string, ttl time.Duration) email.Message {
	return email.Message{
		To:      to,
		Subject: "Your ShadowMeet OTP Code",
		Body: fmt.Sprintf(`### ShadowMeet verification code

Your one-time verification code is:

**%s**

This code expires in %s.
`, code, humanDuration(ttl)),
	}
}

func resetLink(clientURL, token, address string) string {
	return fmt.Sprintf("%s/reset-password?token=%s&email=%s", clientURL, url.QueryEscape(token), url.QueryEscape(address))
}

func resetMessage(to, link string, ttl time.Duration) email.Message {
	return email.Message{
		To:      to,
		Subject: "ShadowMeet: password reset instructions",
		Body: fmt.Sprintf(`### Reset your ShadowMeet password

Click the link below to reset your password. This link is valid for %s.

[%s](%s)

If you didn't request this, you can safely ignore this email.
`, humanDuration(ttl), link, link),
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
