package mailer

import (
	"strings"
	"testing"
)

func TestVerifyEmailMessage(t *testing.T) {
	msg, err := VerifyEmailMessage("a@example.com", "Ram <script>", "123456")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "Account verification OTP" {
		t.Fatalf("subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "<strong>123456</strong>") {
		t.Fatalf("code missing from html: %s", msg.HTML)
	}
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("name was not escaped: %s", msg.HTML)
	}
}

func TestResetPasswordMessage(t *testing.T) {
	msg, err := ResetPasswordMessage("a@example.com", "Ram", "654321")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg.Text, "654321") {
		t.Fatalf("code missing from text: %s", msg.Text)
	}
}
