package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

type fileUploadConfig struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Provider string `json:"provider"` // "drive" (default) or "s3"
	Bucket   string `json:"bucket"`   // s3 only
	Region   string `json:"region"`   // s3 only
}

// FileUpload uploads a local file to Google Drive (default) or S3,
// substituting a predecessor-produced file when the workflow already
// generated one upstream, per spec §4.3. Grounded on
// internal/integrations/google/drive.go and internal/integrations/aws/s3.go.
type FileUpload struct{}

func NewFileUpload() *FileUpload { return &FileUpload{} }

func (FileUpload) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg fileUploadConfig
	if len(req.Node.Config) > 0 {
		if err := json.Unmarshal(req.Node.Config, &cfg); err != nil {
			return adapter.Error("Error: invalid file_upload config: %v", err)
		}
	}

	path := cfg.Path
	if p, ok := substitutePredecessorFile(req.Predecessors); ok {
		path = p
	}
	if path == "" {
		return adapter.Error("Error: path is required")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return adapter.Error("Error: %v", err)
	}

	mimeType := cfg.MimeType
	if mimeType == "" {
		mimeType = mimetype.Detect(content).String()
	}

	name := cfg.Name
	if name == "" {
		name = filepath.Base(path)
	}

	var url string
	if cfg.Provider == "s3" {
		url, err = uploadToS3(ctx, cfg, name, mimeType, content)
	} else {
		url, err = uploadToDrive(ctx, req, name, mimeType, content)
	}
	if err != nil {
		return adapter.Error("Error: %v", err)
	}
	return adapter.FileUploaded(url)
}

// substitutePredecessorFile implements spec §4.3: "If a predecessor
// produced Image generated:, Report generated:, or Document parsed:, use
// that file instead of the configured path."
func substitutePredecessorFile(predecessors map[string]adapter.Result) (string, bool) {
	for _, r := range predecessors {
		switch r.Kind {
		case adapter.KindImageGenerated, adapter.KindReportGenerated, adapter.KindDocumentParsed:
			return r.Path, true
		}
	}
	return "", false
}

func uploadToDrive(ctx context.Context, req executor.Request, name, mimeType string, content []byte) (string, error) {
	credJSON := req.Broker.Google(ctx)
	if credJSON == "" {
		return "", errNoCredential("google")
	}

	svc, err := drive.NewService(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	if err != nil {
		return "", fmt.Errorf("failed to create drive service: %w", err)
	}

	file := &drive.File{Name: name, MimeType: mimeType}
	uploaded, err := svc.Files.Create(file).Media(bytes.NewReader(content)).Fields("id, webViewLink").Do()
	if err != nil {
		return "", err
	}
	if uploaded.WebViewLink != "" {
		return uploaded.WebViewLink, nil
	}
	return "https://drive.google.com/file/d/" + uploaded.Id + "/view", nil
}

func uploadToS3(ctx context.Context, cfg fileUploadConfig, name, mimeType string, content []byte) (string, error) {
	if cfg.Bucket == "" {
		return "", fmt.Errorf("bucket is required for s3 provider")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return "", fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(cfg.Bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, region, name), nil
}
