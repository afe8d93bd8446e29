package nodes

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

const reportOutputDir = "generated_reports"

type reportConfig struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  string `json:"format"` // "pdf" (default) or "docx"
}

// ReportGenerator synthesises a PDF (via jung-kurt/gofpdf) or DOCX (a
// hand-rolled minimal OOXML writer, mirroring document_parser's reader
// since no docx library appears in the pack) report, enriched with every
// predecessor's result per spec §4.3.
type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator { return &ReportGenerator{} }

func (ReportGenerator) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg reportConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid report_generator config: %v", err)
		}
	}
	if cfg.Title == "" {
		return adapter.Error("Error: title is required")
	}

	content := enrichReportContent(cfg.Content, req.Predecessors)

	if err := os.MkdirAll(reportOutputDir, 0o755); err != nil {
		return adapter.Error("Error: %v", err)
	}

	var (
		path string
		err  error
	)
	if cfg.Format == "docx" {
		path, err = writeDOCXReport(cfg.Title, content)
	} else {
		path, err = writePDFReport(cfg.Title, content)
	}
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.ReportGenerated(path)
}

// enrichReportContent implements spec §4.3: "Enriches content with every
// predecessor result: file-upload metadata, parsed-document summaries, AI
// responses (tagged by source id), image names, email/webhook
// confirmations."
func enrichReportContent(content string, predecessors map[string]adapter.Result) string {
	var sb strings.Builder
	sb.WriteString(content)

	for sourceID, r := range predecessors {
		switch r.Kind {
		case adapter.KindDocumentParsed:
			doc, err := loadParsedDocument(r.Path)
			if err == nil {
				summary := doc.Content
				if len(summary) > documentSummaryLimit {
					summary = summary[:documentSummaryLimit]
				}
				fmt.Fprintf(&sb, "\n\n--- Document (%s) ---\n%s", sourceID, summary)
			}
		case adapter.KindAIText:
			fmt.Fprintf(&sb, "\n\n--- AI Response (%s) ---\n%s", sourceID, r.Text)
		case adapter.KindImageGenerated:
			fmt.Fprintf(&sb, "\n\nImage: %s", filepath.Base(r.Path))
		case adapter.KindFileUploaded:
			fmt.Fprintf(&sb, "\n\nUploaded file: %s", r.URL)
		case adapter.KindNotification:
			fmt.Fprintf(&sb, "\n\n%s", r.Text)
		}
	}
	return sb.String()
}

func writePDFReport(title, content string) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 10, title, "", "", false)
	pdf.Ln(4)
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, content, "", "", false)

	path := filepath.Join(reportOutputDir, fmt.Sprintf("report_%d.pdf", time.Now().UnixNano()))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeDOCXReport(title, content string) (string, error) {
	path := filepath.Join(reportOutputDir, fmt.Sprintf("report_%d.docx", time.Now().UnixNano()))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	parts := map[string]string{
		"[Content_Types].xml": docxContentTypes,
		"_rels/.rels":         docxRootRels,
		"word/document.xml":   docxDocumentXML(title, content),
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			return "", err
		}
		if _, err := w.Write([]byte(body)); err != nil {
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return path, nil
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func docxDocumentXML(title, content string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	sb.WriteString(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>`)
	sb.WriteString(xmlEscape(title))
	sb.WriteString(`</w:t></w:r></w:p>`)
	for _, line := range strings.Split(content, "\n") {
		sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		sb.WriteString(xmlEscape(line))
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
