package mail

import (
	"bytes"
	"html/template"
)

const newsletterTpl = `<!DOCTYPE html>
<html lang="en">
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="background-color:#fff;margin:0 auto;font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;padding:.5rem">
  <table align="center" width="100%" role="presentation" cellspacing="0" cellpadding="0" border="0" style="max-width:600px;margin:40px auto;padding:20px">
    <tbody><tr><td>
      <h1 style="font-size:20px;font-weight:600;margin:0 0 24px">{{.Subject}}</h1>
      <div style="font-size:14px;line-height:24px;color:#111">{{.Body}}</div>
      <hr style="border:none;border-top:1px solid #eee;margin:32px 0 16px" />
      <p style="font-size:12px;color:#888">You are receiving this because you subscribed to {{.SiteName}}.
      {{if .UnsubscribeURL}}<a href="{{.UnsubscribeURL}}" style="color:#888">Unsubscribe</a>{{end}}</p>
    </td></tr></tbody>
  </table>
</body>
</html>`

const welcomeTpl = `<!DOCTYPE html>
<html lang="en">
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;padding:.5rem">
  <p>Thanks for subscribing to <a href="{{.SiteURL}}">{{.SiteName}}</a>. New posts and job openings will arrive in this inbox.</p>
  <p style="font-size:12px;color:#888"><a href="{{.UnsubscribeURL}}" style="color:#888">Unsubscribe</a></p>
</body>
</html>`

var (
	newsletterTemplate = template.Must(template.New("newsletter").Parse(newsletterTpl))
	welcomeTemplate    = template.Must(template.New("welcome").Parse(welcomeTpl))
)

// NewsletterData feeds the newsletter template. Body is already-rendered HTML.
type NewsletterData struct {
	Subject        string
	Body           template.HTML
	SiteName       string
	UnsubscribeURL string
}

type WelcomeData struct {
	SiteName       string
	SiteURL        string
	UnsubscribeURL string
}

func RenderNewsletter(data NewsletterData) (string, error) {
	return render(newsletterTemplate, data)
}

func RenderWelcome(data WelcomeData) (string, error) {
	return render(welcomeTemplate, data)
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
