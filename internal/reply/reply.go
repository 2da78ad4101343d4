// Package reply turns a raw inbound message into the plain reply text the
// classifier expects: MIME decoding, HTML stripping and removal of the quoted
// thread below the reply.
package reply

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message is a parsed inbound reply
type Message struct {
	MessageID string
	From      string
	FromName  string
	Subject   string
	Body      string
	HTMLBody  string
}

// ParseMessage reads an RFC 5322 message (an .eml file) and keeps the first
// text/plain and text/html parts.
func ParseMessage(r io.Reader) (*Message, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("failed to read message: empty input")
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()

	msg := &Message{}
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}
	if id, err := mr.Header.MessageID(); err == nil {
		msg.MessageID = id
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
		msg.FromName = from[0].Name
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if msg.Body != "" || msg.HTMLBody != "" {
				break
			}
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		body, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}

		if strings.HasPrefix(ct, "text/plain") && msg.Body == "" {
			msg.Body = string(body)
		} else if strings.HasPrefix(ct, "text/html") && msg.HTMLBody == "" {
			msg.HTMLBody = string(body)
		}
	}

	return msg, nil
}

// ReplyText is the newly written part of the message: the plain body, or the
// HTML body converted to text, with the quoted thread removed.
func (m *Message) ReplyText() string {
	content := m.Body
	if strings.TrimSpace(content) == "" {
		content = HTMLToText(m.HTMLBody)
	}
	return StripQuoted(content)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// HTMLToText drops script and style elements and returns the document text
// with whitespace collapsed
func HTMLToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, head").Remove()
	// The quoted thread in most clients lives in a blockquote
	doc.Find("blockquote, div.gmail_quote").Remove()
	doc.Find("br, p, div, li, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Markers that start the quoted part of a reply
var quoteHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^on\s.+wrote:\s*$`),
	regexp.MustCompile(`(?i)^-{2,}\s*original message\s*-{2,}$`),
	regexp.MustCompile(`(?i)^-{2,}\s*forwarded message\s*-{2,}$`),
	regexp.MustCompile(`(?i)^from:\s.+`),
	regexp.MustCompile(`(?i)^sent from my (iphone|ipad|android|phone)`),
	regexp.MustCompile(`^_{5,}$`),
}

// StripQuoted cuts the text at the first quote header and drops ">" lines.
// Lines are not length limited.
func StripQuoted(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r ")
		trimmed := strings.TrimSpace(line)

		if isQuoteHeader(trimmed) {
			break
		}
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func isQuoteHeader(line string) bool {
	for _, re := range quoteHeaderPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
