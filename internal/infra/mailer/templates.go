package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

var verifyTemplate = template.Must(template.New("verify").Parse(`<h2>Account Verification</h2>
<p>Hi {{.Name}},</p>
<p>Your OTP is: <strong>{{.Code}}</strong></p>
<p>This OTP will expire in 24 hours.</p>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`<h2>Password Reset</h2>
<p>Hi {{.Name}},</p>
<p>Your OTP for resetting the password is <strong>{{.Code}}</strong>.</p>
<p>It expires in 15 minutes. If you did not ask for a reset you can ignore this e-mail.</p>
`))

type otpData struct {
	Name string
	Code string
}

func VerifyEmailMessage(to, name, code string) (Message, error) {
	html, err := render(verifyTemplate, otpData{Name: name, Code: code})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Account verification OTP",
		Text:    fmt.Sprintf("Your OTP is %s. It expires in 24 hours.", code),
		HTML:    html,
	}, nil
}

func ResetPasswordMessage(to, name, code string) (Message, error) {
	html, err := render(resetTemplate, otpData{Name: name, Code: code})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Password reset OTP",
		Text: fmt.Sprintf("Your OTP for resetting the password is %s. "+
			"Use this OTP to proceed with resetting your password.", code),
		HTML: html,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}
