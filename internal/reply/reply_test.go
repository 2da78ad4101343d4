package reply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipartEML = "From: Jane Doe <jane@example.com>\r\n" +
	"To: sales@leadsend.io\r\n" +
	"Subject: Re: Quick question\r\n" +
	"Message-ID: <abc123@example.com>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/alternative; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Sounds good, send the deck.\r\n" +
	"\r\n" +
	"On Tue, Mar 4, 2025 at 9:12 AM Sales <sales@leadsend.io> wrote:\r\n" +
	"> Are you interested in a demo?\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><body><p>Sounds good, send the deck.</p></body></html>\r\n" +
	"--XYZ--\r\n"

const htmlOnlyEML = "From: ops@example.com\r\n" +
	"Subject: Automatic reply\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><head><style>p{color:red}</style></head><body>" +
	"<p>I am out of the office</p><p>Back on Monday</p>" +
	"<blockquote>Please unsubscribe me</blockquote>" +
	"<script>var x = 1;</script></body></html>\r\n"

func TestParseMessageMultipart(t *testing.T) {
	msg, err := ParseMessage(strings.NewReader(multipartEML))
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", msg.From)
	assert.Equal(t, "Jane Doe", msg.FromName)
	assert.Equal(t, "Re: Quick question", msg.Subject)
	assert.Equal(t, "abc123@example.com", msg.MessageID)
	assert.Contains(t, msg.Body, "Sounds good, send the deck.")
	assert.Contains(t, msg.HTMLBody, "<p>Sounds good")

	assert.Equal(t, "Sounds good, send the deck.", msg.ReplyText())
}

func TestParseMessageHTMLOnly(t *testing.T) {
	msg, err := ParseMessage(strings.NewReader(htmlOnlyEML))
	require.NoError(t, err)

	assert.Empty(t, msg.Body)
	text := msg.ReplyText()
	assert.Contains(t, text, "I am out of the office")
	assert.Contains(t, text, "Back on Monday")
	assert.NotContains(t, text, "unsubscribe")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "color")
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ParseMessage(strings.NewReader(""))
	assert.Error(t, err)
}

func TestStripQuoted(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "gmail style",
			text:     "Not interested.\n\nOn Mon, Jan 6, 2025 at 10:00 AM Bob <bob@x.com> wrote:\n> Would you like a demo?",
			expected: "Not interested.",
		},
		{
			name:     "outlook style",
			text:     "Please call me.\r\n-----Original Message-----\r\nFrom: Bob\r\nPlease unsubscribe",
			expected: "Please call me.",
		},
		{
			name:     "from header block",
			text:     "Wrong person, sorry\n\nFrom: Sales Team <sales@x.com>\nSent: Monday",
			expected: "Wrong person, sorry",
		},
		{
			name:     "interleaved quotes",
			text:     "> old line\nnew line\n>> older\nanother",
			expected: "new line\nanother",
		},
		{
			name:     "mobile signature",
			text:     "Sure, send it over\nSent from my iPhone",
			expected: "Sure, send it over",
		},
		{
			name:     "nothing quoted",
			text:     "  Just a reply  ",
			expected: "Just a reply",
		},
		{
			name:     "empty",
			text:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripQuoted(tt.text))
		})
	}
}

func TestStripQuotedLongLine(t *testing.T) {
	long := strings.Repeat("x", 2<<20)
	got := StripQuoted(long + "\nplease unsubscribe me\n> quoted")

	assert.Len(t, got, len(long)+len("\nplease unsubscribe me"))
	assert.True(t, strings.HasSuffix(got, "please unsubscribe me"))
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", HTMLToText(""))
	assert.Equal(t, "Hello\nworld", HTMLToText("<div>Hello</div><div>world</div>"))
	assert.Equal(t, "a b", HTMLToText("<p>a   \t b</p>"))
}
