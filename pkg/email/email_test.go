package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("### Title\n\nYour code is **123456**.\n\n[Reset](https://example.com/reset?token=abc&email=a%40x.com)")
	require.NoError(t, err)

	assert.Contains(t, html, "<h3>Title</h3>")
	assert.Contains(t, html, "<strong>123456</strong>")
	assert.Contains(t, html, `href="https://example.com/reset?token=abc`)
	assert.Contains(t, html, ">Reset</a>")
}

func TestRenderHTMLEscapesRawHTML(t *testing.T) {
	html, err := RenderHTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestBuildMessage(t *testing.T) {
	raw, err := buildMessage("noreply@shadowmeet.app", "a@x.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)

	s := string(raw)
	assert.True(t, strings.HasPrefix(s, "From: noreply@shadowmeet.app\r\n"))
	assert.Contains(t, s, "To: a@x.com\r\n")
	assert.Contains(t, s, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(s, "<p>hi</p>\r\n"))
}

func TestBuildMessageRejectsHeaderInjection(t *testing.T) {
	_, err := buildMessage("noreply@shadowmeet.app", "a@x.com\r\nBcc: evil@x.com", "Hello", "")
	assert.Error(t, err)
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender("localhost", "2525", "a@x.com", "pw").Send(ctx, Message{To: "b@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
