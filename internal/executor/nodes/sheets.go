package nodes

import (
	"context"
	"encoding/json"
	"fmt"

	gsheets "google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

type sheetsConfig struct {
	SpreadsheetID string          `json:"spreadsheet_id"`
	Range         string          `json:"range"`
	Values        [][]interface{} `json:"values"`
}

// excelSheet mirrors the `sheets` extra that spec §4.4 adds to a
// document_parser result when the parsed file is an Excel workbook.
type excelSheet struct {
	Header []string        `json:"header"`
	Rows   [][]interface{} `json:"rows"`
}

// GoogleSheets writes to a spreadsheet via sheets/v4, grounded on
// internal/integrations/google/sheets.go's service construction. The
// broker's Google() credential is treated as service-account JSON
// (Sheets write access requires OAuth scope; a bare API key is read-only).
type GoogleSheets struct{}

func NewGoogleSheets() *GoogleSheets { return &GoogleSheets{} }

func (GoogleSheets) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg sheetsConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid google_sheets config: %v", err)
		}
	}
	if cfg.SpreadsheetID == "" || cfg.Range == "" {
		return adapter.Error("Error: spreadsheet_id and range are required")
	}

	values := cfg.Values
	if excel, ok := firstExcelPredecessor(req.Predecessors); ok {
		values = excelToValues(excel)
	}
	if len(values) == 0 {
		return adapter.Error("Error: no values to write")
	}

	credJSON := req.Broker.Google(ctx)
	if credJSON == "" {
		return adapter.Error("Error: %v", errNoCredential("google"))
	}

	svc, err := sheets.NewService(ctx, gsheets.WithCredentialsJSON([]byte(credJSON)))
	if err != nil {
		return adapter.Error("Error: failed to create sheets service: %v", err)
	}

	vr := &sheets.ValueRange{Values: values}
	_, err = svc.Spreadsheets.Values.Update(cfg.SpreadsheetID, cfg.Range, vr).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.Notification(fmt.Sprintf("Wrote %d rows to %s", len(values), cfg.Range))
}

// firstExcelPredecessor finds a document_parser result whose parsed JSON
// carries the Excel-specific `sheets` extra.
func firstExcelPredecessor(predecessors map[string]adapter.Result) (excelSheet, bool) {
	for _, r := range predecessors {
		if r.Kind != adapter.KindDocumentParsed {
			continue
		}
		data, err := loadRawDocument(r.Path)
		if err != nil {
			continue
		}
		var doc struct {
			Sheets []excelSheet `json:"sheets"`
		}
		if err := json.Unmarshal(data, &doc); err != nil || len(doc.Sheets) == 0 {
			continue
		}
		return doc.Sheets[0], true
	}
	return excelSheet{}, false
}

func excelToValues(s excelSheet) [][]interface{} {
	out := make([][]interface{}, 0, len(s.Rows)+1)
	header := make([]interface{}, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	out = append(out, header)
	out = append(out, s.Rows...)
	return out
}
