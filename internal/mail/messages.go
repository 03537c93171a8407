package mail

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Message kinds.
const (
	KindWelcome      = "welcome"
	KindAdminSignup  = "admin_signup"
	KindVerification = "verification"
	KindExport       = "export"
)

// VerificationLink builds the link a user follows to verify their email.
func VerificationLink(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/api/v1/auth/verify-email?code=" + url.QueryEscape(code)
}

func Welcome(to, name, link string) Message {
	return Message{
		Kind:    KindWelcome,
		To:      []string{to},
		Subject: "Welcome to ThoughtForest",
		Body: fmt.Sprintf("Thank you for joining ThoughtForest, %s. Every entry you record becomes part of your weekly journal summary.\n\n"+
			"Reply to this email with feedback or to ask for a free month of access.\n\n"+
			"You can verify your email by following this link:\n\n%s", name, link),
	}
}

func AdminSignup(to, name string, at time.Time) Message {
	return Message{
		Kind:    KindAdminSignup,
		To:      []string{to},
		Subject: fmt.Sprintf("%s has joined ThoughtForest", name),
		Body:    fmt.Sprintf("%s has joined ThoughtForest at %s.", name, at.UTC().Format("15:04:05")),
	}
}

func Verification(to, code, link string) Message {
	return Message{
		Kind:    KindVerification,
		To:      []string{to},
		Subject: "New Verification Code",
		HTML:    true,
		Body: fmt.Sprintf(`Your new verification code is: %s<br><br>You can verify your email by following this link:<br><br><a href="%s">%s</a>`,
			code, link, link),
	}
}

// Export attaches data as user_data.json.
func Export(to string, data []byte) Message {
	return Message{
		Kind:    KindExport,
		To:      []string{to},
		Subject: "Your Data Export",
		Body:    "Please find attached your requested data export.",
		Attachments: []Attachment{{
			Filename:    "user_data.json",
			ContentType: "application/json",
			Data:        data,
		}},
	}
}
