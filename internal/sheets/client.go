// Package sheets wraps the Google Sheets v4 API with the three operations
// the registration core needs: read a range, batch-update cells, delete a
// row. It also classifies failures so callers can tell a missing credential
// from a rejected request from an unreachable backend.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

var (
	// ErrCredentials means the service-account credential is missing or
	// unreadable. Jobs that depend on the spreadsheet backend must treat
	// this as fatal and not start.
	ErrCredentials = errors.New("spreadsheet credentials unavailable")

	// ErrRemote means the backend received the request and rejected it
	// (permissions, bad range, unknown sheet).
	ErrRemote = errors.New("spreadsheet request rejected")

	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("spreadsheet backend unavailable")
)

// ValueUpdate is one cell (or range) write in a batch update.
type ValueUpdate struct {
	Range string
	Value string
}

// Client issues blocking calls against one Sheets API service.
type Client struct {
	svc *sheetsapi.Service
}

// NewClient builds a Sheets API client from a service-account credential
// file. An absent or unreadable file yields ErrCredentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCredentials, credentialsFile, err)
	}

	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	return &Client{svc: svc}, nil
}

// ReadRange reads a named range and returns it as rows of formatted cell
// strings. Short rows are returned as-is; the caller indexes defensively.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "read %q", readRange)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BatchUpdateValues writes all given cells in a single call.
func (c *Client) BatchUpdateValues(ctx context.Context, spreadsheetID string, updates []ValueUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsapi.ValueRange{
			Range:  u.Range,
			Values: [][]any{{u.Value}},
		})
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err, "batch update %d cells", len(updates))
	}
	return nil
}

// DeleteRow removes one physical row, addressed by numeric sheet id and
// 0-based row index.
func (c *Client) DeleteRow(ctx context.Context, spreadsheetID string, sheetGID int64, rowIndex int64) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetGID,
					Dimension:  "ROWS",
					StartIndex: rowIndex,
					EndIndex:   rowIndex + 1,
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(err, "delete row %d", rowIndex)
	}
	return nil
}

func classify(err error, format string, args ...any) error {
	op := fmt.Sprintf(format, args...)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %d %s", ErrRemote, op, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
