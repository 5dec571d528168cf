package google

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/bobuk/gtools/internal/logger"
)

const gmailUser = "me"

// Message is the envelope shape of a Gmail message. Body and Attachments are
// only filled by Read.
type Message struct {
	ID          string       `json:"id"`
	ThreadID    string       `json:"threadId,omitempty"`
	From        string       `json:"from,omitempty"`
	To          string       `json:"to,omitempty"`
	Cc          string       `json:"cc,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Date        string       `json:"date,omitempty"`
	Snippet     string       `json:"snippet,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Body        string       `json:"body,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType,omitempty"`
	Size         int64  `json:"size"`
	AttachmentID string `json:"attachmentId,omitempty"`
}

type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type SearchResult struct {
	Messages           []Message `json:"messages"`
	ResultSizeEstimate int64     `json:"resultSizeEstimate"`
}

// OutgoingMessage is a plain-text message to send.
type OutgoingMessage struct {
	To      string
	Cc      string
	Bcc     string
	Subject string
	Body    string
}

type Gmail struct {
	service *gmail.Service
	ctx     context.Context
}

func NewGmail(ctx context.Context, opts ...option.ClientOption) (*Gmail, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Gmail{service: service, ctx: ctx}, nil
}

// Search lists one page of messages matching query and fetches the headers
// of each.
func (g *Gmail) Search(query string, maxResults int64) (*SearchResult, error) {
	call := g.service.Users.Messages.List(gmailUser)
	if query != "" {
		call = call.Q(query)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	list, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", WrapError(err))
	}

	result := &SearchResult{
		Messages:           make([]Message, 0, len(list.Messages)),
		ResultSizeEstimate: list.ResultSizeEstimate,
	}
	for _, ref := range list.Messages {
		msg, err := g.service.Users.Messages.Get(gmailUser, ref.Id).
			Format("metadata").
			MetadataHeaders("From", "To", "Cc", "Subject", "Date").
			Context(g.ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", ref.Id, WrapError(err))
		}
		result.Messages = append(result.Messages, convertMessage(msg))
	}
	return result, nil
}

// Read fetches a full message including its decoded body.
func (g *Gmail) Read(messageID string) (*Message, error) {
	msg, err := g.service.Users.Messages.Get(gmailUser, messageID).Format("full").Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", WrapError(err))
	}

	result := convertMessage(msg)
	if msg.Payload != nil {
		plain, html := findBodies(msg.Payload)
		result.Body = plain
		if result.Body == "" {
			result.Body = html
		}
		result.Attachments = findAttachments(msg.Payload)
	}
	return &result, nil
}

func (g *Gmail) Send(out *OutgoingMessage) (*Message, error) {
	raw, err := out.rfc2822()
	if err != nil {
		return nil, err
	}

	sent, err := g.service.Users.Messages.Send(gmailUser, &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", WrapError(err))
	}
	return &Message{ID: sent.Id, ThreadID: sent.ThreadId, Labels: sent.LabelIds}, nil
}

func (g *Gmail) Labels() ([]Label, error) {
	list, err := g.service.Users.Labels.List(gmailUser).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", WrapError(err))
	}

	result := make([]Label, 0, len(list.Labels))
	for _, l := range list.Labels {
		result = append(result, Label{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return result, nil
}

// Validate checks the recipient and rejects header values that would break
// the message headers.
func (m *OutgoingMessage) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient (--to) is required")
	}
	for _, v := range []string{m.To, m.Cc, m.Bcc, m.Subject} {
		if strings.ContainsAny(v, "\r\n") {
			return errors.New("header values must not contain line breaks")
		}
	}
	return nil
}

func (m *OutgoingMessage) rfc2822() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("To: " + m.To + "\r\n")
	if m.Cc != "" {
		b.WriteString("Cc: " + m.Cc + "\r\n")
	}
	if m.Bcc != "" {
		b.WriteString("Bcc: " + m.Bcc + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String()), nil
}

func convertMessage(msg *gmail.Message) Message {
	result := Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
	}
	if msg.Payload == nil {
		return result
	}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			result.From = h.Value
		case "to":
			result.To = h.Value
		case "cc":
			result.Cc = h.Value
		case "subject":
			result.Subject = h.Value
		case "date":
			result.Date = h.Value
		}
	}
	return result
}

// findBodies returns the first text/plain and text/html bodies found in a
// depth-first walk of the MIME tree. Attachment parts are skipped.
func findBodies(part *gmail.MessagePart) (plain, html string) {
	if part.Filename == "" && part.Body != nil && part.Body.Data != "" {
		switch {
		case strings.HasPrefix(part.MimeType, "text/plain"):
			plain = decodeBody(part.Body.Data)
		case strings.HasPrefix(part.MimeType, "text/html"):
			html = decodeBody(part.Body.Data)
		}
	}
	for _, child := range part.Parts {
		p, h := findBodies(child)
		if plain == "" {
			plain = p
		}
		if html == "" {
			html = h
		}
	}
	return plain, html
}

func findAttachments(part *gmail.MessagePart) []Attachment {
	var result []Attachment
	if part.Filename != "" {
		a := Attachment{Filename: part.Filename, MimeType: part.MimeType}
		if part.Body != nil {
			a.Size = part.Body.Size
			a.AttachmentID = part.Body.AttachmentId
		}
		result = append(result, a)
	}
	for _, child := range part.Parts {
		result = append(result, findAttachments(child)...)
	}
	return result
}

// decodeBody decodes Gmail's base64url body data, padded or not.
func decodeBody(data string) string {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		logger.Debug("Could not decode message body: %v", err)
		return ""
	}
	return string(decoded)
}
