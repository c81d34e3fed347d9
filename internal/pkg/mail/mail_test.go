package mail

import (
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/jobboard/cms/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDisabled(t *testing.T) {
	s := New(config.MailConfig{Enable: false, Host: "smtp.example.com"})
	assert.False(t, s.Enabled())
	assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"a@b.c"}}), ErrDisabled)
}

func TestBuildBodyHidesBcc(t *testing.T) {
	body := string(buildBody("news@example.com", Message{
		Bcc:     []string{"secret@example.com"},
		Subject: "Héllo",
		HTML:    "<p>hi</p>",
	}))
	assert.Contains(t, body, "To: undisclosed-recipients:;\r\n")
	assert.NotContains(t, body, "secret@example.com")
	assert.Contains(t, body, "Subject: =?utf-8?q?H=C3=A9llo?=")
	assert.True(t, strings.HasSuffix(body, "\r\n\r\n<p>hi</p>"))
}

func TestRenderNewsletterEscapes(t *testing.T) {
	out, err := RenderNewsletter(NewsletterData{
		Subject:        "<b>Weekly</b>",
		Body:           template.HTML("<p>Rendered</p>"),
		SiteName:       "Board",
		UnsubscribeURL: "https://example.com/unsubscribe?email=a%40b.c&token=t",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;Weekly&lt;/b&gt;")
	assert.Contains(t, out, "<p>Rendered</p>")
	assert.Contains(t, out, "Unsubscribe")
}
