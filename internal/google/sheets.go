package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type SpreadsheetInfo struct {
	SpreadsheetID string      `json:"spreadsheetId"`
	Title         string      `json:"title,omitempty"`
	Locale        string      `json:"locale,omitempty"`
	TimeZone      string      `json:"timeZone,omitempty"`
	URL           string      `json:"url,omitempty"`
	Sheets        []SheetInfo `json:"sheets,omitempty"`
}

type SheetInfo struct {
	SheetID     int64  `json:"sheetId"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount,omitempty"`
	ColumnCount int64  `json:"columnCount,omitempty"`
}

type ValueRange struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values"`
}

type UpdateResult struct {
	UpdatedRange   string `json:"updatedRange,omitempty"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

type Sheets struct {
	service *sheets.Service
	ctx     context.Context
}

func NewSheets(ctx context.Context, opts ...option.ClientOption) (*Sheets, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Sheets{service: service, ctx: ctx}, nil
}

func (g *Sheets) Info(spreadsheetID string) (*SpreadsheetInfo, error) {
	ss, err := g.service.Spreadsheets.Get(spreadsheetID).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", WrapError(err))
	}

	info := &SpreadsheetInfo{
		SpreadsheetID: ss.SpreadsheetId,
		URL:           ss.SpreadsheetUrl,
	}
	if ss.Properties != nil {
		info.Title = ss.Properties.Title
		info.Locale = ss.Properties.Locale
		info.TimeZone = ss.Properties.TimeZone
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties == nil {
			continue
		}
		si := SheetInfo{
			SheetID: sheet.Properties.SheetId,
			Title:   sheet.Properties.Title,
			Index:   sheet.Properties.Index,
		}
		if grid := sheet.Properties.GridProperties; grid != nil {
			si.RowCount = grid.RowCount
			si.ColumnCount = grid.ColumnCount
		}
		info.Sheets = append(info.Sheets, si)
	}
	return info, nil
}

func (g *Sheets) Read(spreadsheetID, readRange string) (*ValueRange, error) {
	if readRange == "" {
		return nil, errors.New("range is required")
	}
	vr, err := g.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", WrapError(err))
	}

	values := vr.Values
	if values == nil {
		values = [][]any{}
	}
	return &ValueRange{Range: vr.Range, MajorDimension: vr.MajorDimension, Values: values}, nil
}

// Write overwrites the range. With raw set, values are stored as-is instead
// of being parsed as if typed into the UI.
func (g *Sheets) Write(spreadsheetID, writeRange string, values [][]any, raw bool) (*UpdateResult, error) {
	if writeRange == "" {
		return nil, errors.New("range is required")
	}
	resp, err := g.service.Spreadsheets.Values.Update(spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputOption(raw)).
		Context(g.ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to write values: %w", WrapError(err))
	}
	return convertUpdate(resp), nil
}

// Append adds rows after the last row of the table found in appendRange.
func (g *Sheets) Append(spreadsheetID, appendRange string, values [][]any, raw bool) (*UpdateResult, error) {
	if appendRange == "" {
		return nil, errors.New("range is required")
	}
	resp, err := g.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{Values: values}).
		ValueInputOption(inputOption(raw)).
		InsertDataOption("INSERT_ROWS").
		Context(g.ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to append values: %w", WrapError(err))
	}
	if resp.Updates == nil {
		return &UpdateResult{}, nil
	}
	return convertUpdate(resp.Updates), nil
}

func (g *Sheets) Create(title string) (*SpreadsheetInfo, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	ss, err := g.service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet: %w", WrapError(err))
	}

	info := &SpreadsheetInfo{SpreadsheetID: ss.SpreadsheetId, URL: ss.SpreadsheetUrl, Title: title}
	if ss.Properties != nil && ss.Properties.Title != "" {
		info.Title = ss.Properties.Title
	}
	return info, nil
}

// ParseValues decodes a JSON 2D array. A flat array is taken as one row.
func ParseValues(s string) ([][]any, error) {
	if s == "" {
		return nil, errors.New("values are required")
	}

	var rows [][]any
	if err := json.Unmarshal([]byte(s), &rows); err == nil {
		if len(rows) == 0 {
			return nil, errors.New("values must not be empty")
		}
		return rows, nil
	}

	var row []any
	if err := json.Unmarshal([]byte(s), &row); err != nil {
		return nil, fmt.Errorf("values must be a JSON array of rows: %w", err)
	}
	if len(row) == 0 {
		return nil, errors.New("values must not be empty")
	}
	return [][]any{row}, nil
}

func inputOption(raw bool) string {
	if raw {
		return "RAW"
	}
	return "USER_ENTERED"
}

func convertUpdate(resp *sheets.UpdateValuesResponse) *UpdateResult {
	return &UpdateResult{
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}
}
