package nodes

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const parsedDocOutputDir = "parsed_documents"

type documentParserConfig struct {
	FilePath string `json:"file_path"`
}

// parsedDocumentOut is the JSON shape spec §4.4 assigns to the
// `Document parsed:` output file.
type parsedDocumentOut struct {
	Type     string             `json:"type"`
	Content  string             `json:"content"`
	Metadata parsedDocMetadata  `json:"metadata"`
	Pages    int                `json:"pages,omitempty"`
	Sheets   []parsedDocSheet   `json:"sheets,omitempty"`
}

type parsedDocMetadata struct {
	FileName       string `json:"file_name"`
	CharacterCount int    `json:"character_count"`
}

type parsedDocSheet struct {
	Header []string        `json:"header"`
	Rows   [][]interface{} `json:"rows"`
}

// DocumentParser parses PDF/DOCX/XLSX/CSV/JSON/TXT into the tagged JSON
// representation every other executor's absorption logic reads. Grounded
// on spec §4.3/§4.4's result shape; PDF via ledongthuc/pdf, DOCX/XLSX via
// a hand-rolled OOXML (zip+XML) reader since no docx/xlsx library appears
// anywhere in the pack (documented in DESIGN.md), CSV via stdlib
// encoding/csv (likewise undocumented by any pack library).
type DocumentParser struct{}

func NewDocumentParser() *DocumentParser { return &DocumentParser{} }

func (DocumentParser) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg documentParserConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid document_parser config: %v", err)
		}
	}

	path := cfg.FilePath
	if url, ok := firstUploadedFile(req.Predecessors); ok {
		downloaded, err := downloadToTemp(ctx, url)
		if err != nil {
			return adapter.Error("Error: failed to download %s: %v", url, err)
		}
		path = downloaded
	}
	if path == "" {
		return adapter.Error("Error: file_path is required")
	}

	out, err := parseDocument(path)
	if err != nil {
		return adapter.Error("Error: %v", err)
	}

	outPath, err := writeParsedDocument(out)
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.DocumentParsed(outPath)
}

func firstUploadedFile(predecessors map[string]adapter.Result) (string, bool) {
	for _, r := range predecessors {
		if r.Kind == adapter.KindFileUploaded && strings.HasPrefix(r.URL, "http") {
			return r.URL, true
		}
	}
	return "", false
}

func downloadToTemp(ctx context.Context, url string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "autoflow-download-*")
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}

func parseDocument(path string) (parsedDocumentOut, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fileName := filepath.Base(path)

	switch ext {
	case ".pdf":
		return parsePDF(path, fileName)
	case ".docx":
		return parseDOCX(path, fileName)
	case ".xlsx":
		return parseXLSX(path, fileName)
	case ".csv":
		return parseCSV(path, fileName)
	case ".json":
		return parseJSONDoc(path, fileName)
	default:
		return parseTXT(path, fileName)
	}
}

func parsePDF(path, fileName string) (parsedDocumentOut, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return parsedDocumentOut{}, err
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return parsedDocumentOut{}, err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return parsedDocumentOut{}, err
	}
	content := buf.String()

	return parsedDocumentOut{
		Type:    "pdf",
		Content: content,
		Metadata: parsedDocMetadata{
			FileName:       fileName,
			CharacterCount: len(content),
		},
		Pages: r.NumPage(),
	}, nil
}

// OOXML (docx/xlsx) documents are zip archives of XML parts. docx text
// lives in word/document.xml as a run of <w:t> elements; xlsx shared
// strings live in xl/sharedStrings.xml with per-sheet cell references in
// xl/worksheets/sheet1.xml. No third-party parser for either format
// appears in the example pack, so both are read directly.
func parseDOCX(path, fileName string) (parsedDocumentOut, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return parsedDocumentOut{}, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return parsedDocumentOut{}, err
		}
		defer rc.Close()

		content, err := extractDOCXText(rc)
		if err != nil {
			return parsedDocumentOut{}, err
		}
		return parsedDocumentOut{
			Type:    "docx",
			Content: content,
			Metadata: parsedDocMetadata{
				FileName:       fileName,
				CharacterCount: len(content),
			},
		}, nil
	}
	return parsedDocumentOut{}, fmt.Errorf("word/document.xml not found in %s", fileName)
}

func extractDOCXText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
			if t.Name.Local == "p" && sb.Len() > 0 {
				sb.WriteString("\n")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

func parseXLSX(path, fileName string) (parsedDocumentOut, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return parsedDocumentOut{}, err
	}
	defer zr.Close()

	shared, err := readSharedStrings(zr)
	if err != nil {
		return parsedDocumentOut{}, err
	}

	var sheetFile *zip.File
	for _, f := range zr.File {
		if f.Name == "xl/worksheets/sheet1.xml" {
			sheetFile = f
			break
		}
	}
	if sheetFile == nil {
		return parsedDocumentOut{}, fmt.Errorf("no worksheet found in %s", fileName)
	}

	rc, err := sheetFile.Open()
	if err != nil {
		return parsedDocumentOut{}, err
	}
	defer rc.Close()

	rows, err := readSheetRows(rc, shared)
	if err != nil {
		return parsedDocumentOut{}, err
	}

	var header []string
	var body [][]interface{}
	if len(rows) > 0 {
		header = rows[0]
		for _, row := range rows[1:] {
			cells := make([]interface{}, len(row))
			for i, c := range row {
				cells[i] = c
			}
			body = append(body, cells)
		}
	}

	content := strings.Join(header, ", ")
	return parsedDocumentOut{
		Type:    "xlsx",
		Content: content,
		Metadata: parsedDocMetadata{
			FileName:       fileName,
			CharacterCount: len(content),
		},
		Sheets: []parsedDocSheet{{Header: header, Rows: body}},
	}, nil
}

type xlsxSST struct {
	Items []struct {
		T string `xml:"t"`
	} `xml:"si"`
}

func readSharedStrings(zr *zip.ReadCloser) ([]string, error) {
	for _, f := range zr.File {
		if f.Name != "xl/sharedStrings.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		var sst xlsxSST
		if err := xml.NewDecoder(rc).Decode(&sst); err != nil {
			return nil, err
		}
		out := make([]string, len(sst.Items))
		for i, item := range sst.Items {
			out[i] = item.T
		}
		return out, nil
	}
	return nil, nil
}

type xlsxSheetXML struct {
	Rows []struct {
		Cells []struct {
			Type  string `xml:"t,attr"`
			Value string `xml:"v"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

func readSheetRows(r io.Reader, shared []string) ([][]string, error) {
	var sheet xlsxSheetXML
	if err := xml.NewDecoder(r).Decode(&sheet); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			if c.Type == "s" {
				idx := 0
				fmt.Sscanf(c.Value, "%d", &idx)
				if idx >= 0 && idx < len(shared) {
					cells = append(cells, shared[idx])
					continue
				}
			}
			cells = append(cells, c.Value)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func parseCSV(path, fileName string) (parsedDocumentOut, error) {
	f, err := os.Open(path)
	if err != nil {
		return parsedDocumentOut{}, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return parsedDocumentOut{}, err
	}

	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(strings.Join(rec, ", "))
		sb.WriteString("\n")
	}
	content := sb.String()

	return parsedDocumentOut{
		Type:    "csv",
		Content: content,
		Metadata: parsedDocMetadata{
			FileName:       fileName,
			CharacterCount: len(content),
		},
	}, nil
}

func parseJSONDoc(path, fileName string) (parsedDocumentOut, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedDocumentOut{}, err
	}
	content := string(data)
	return parsedDocumentOut{
		Type:    "json",
		Content: content,
		Metadata: parsedDocMetadata{
			FileName:       fileName,
			CharacterCount: len(content),
		},
	}, nil
}

func parseTXT(path, fileName string) (parsedDocumentOut, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parsedDocumentOut{}, err
	}
	content := string(data)
	return parsedDocumentOut{
		Type:    "txt",
		Content: content,
		Metadata: parsedDocMetadata{
			FileName:       fileName,
			CharacterCount: len(content),
		},
	}, nil
}

func writeParsedDocument(out parsedDocumentOut) (string, error) {
	if err := os.MkdirAll(parsedDocOutputDir, 0o755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(parsedDocOutputDir, fmt.Sprintf("doc_%d.json", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
