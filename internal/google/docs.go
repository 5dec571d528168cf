package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Document is a Google Doc reduced to its plain text.
type Document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title,omitempty"`
	RevisionID string `json:"revisionId,omitempty"`
	Text       string `json:"text,omitempty"`
	URL        string `json:"url,omitempty"`
}

type Docs struct {
	service *docs.Service
	ctx     context.Context
}

func NewDocs(ctx context.Context, opts ...option.ClientOption) (*Docs, error) {
	service, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}
	return &Docs{service: service, ctx: ctx}, nil
}

func (g *Docs) Read(documentID string) (*Document, error) {
	doc, err := g.service.Documents.Get(documentID).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", WrapError(err))
	}

	var b strings.Builder
	if doc.Body != nil {
		writeContent(&b, doc.Body.Content)
	}
	return &Document{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
		RevisionID: doc.RevisionId,
		Text:       b.String(),
	}, nil
}

// Create makes an empty document, then appends text when given.
func (g *Docs) Create(title, text string) (*Document, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	doc, err := g.service.Documents.Create(&docs.Document{Title: title}).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", WrapError(err))
	}

	result := &Document{
		DocumentID: doc.DocumentId,
		Title:      doc.Title,
		RevisionID: doc.RevisionId,
		URL:        documentURL(doc.DocumentId),
	}
	if text == "" {
		return result, nil
	}

	appended, err := g.Append(doc.DocumentId, text)
	if err != nil {
		return nil, fmt.Errorf("document %s created but text not added: %w", doc.DocumentId, err)
	}
	result.RevisionID = appended.RevisionID
	return result, nil
}

// Append inserts plain text at the end of the document body.
func (g *Docs) Append(documentID, text string) (*Document, error) {
	if text == "" {
		return nil, errors.New("text is required")
	}
	resp, err := g.service.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:                 text,
				EndOfSegmentLocation: &docs.EndOfSegmentLocation{},
			},
		}},
	}).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", WrapError(err))
	}

	result := &Document{DocumentID: resp.DocumentId}
	if resp.WriteControl != nil {
		result.RevisionID = resp.WriteControl.RequiredRevisionId
	}
	return result, nil
}

func writeContent(b *strings.Builder, content []*docs.StructuralElement) {
	for _, el := range content {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					b.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeContent(b, cell.Content)
				}
			}
		case el.TableOfContents != nil:
			writeContent(b, el.TableOfContents.Content)
		}
	}
}

func documentURL(id string) string {
	return "https://docs.google.com/document/d/" + id + "/edit"
}
