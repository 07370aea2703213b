// Package uploads implements the file-upload gatekeeper: it validates an
// uploaded file against the safety policy, stores it in S3 under a
// collision-resistant key, and mints time-limited retrieval URLs.
package uploads

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/config"
)

// allowedMimeTypes is the upload allow-list: common image formats, PDF and
// Office document formats. Both the declared content type and the type
// inferred from the file extension are checked against it, independently of
// each other.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// extensionMimeTypes maps the extensions we accept to their canonical MIME
// type. The stdlib mime database is consulted first; this table covers the
// Office formats some systems do not register.
var extensionMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Stable validation messages; each gate fails with its own.
const (
	msgNoFile           = "no file provided"
	msgEmptyFile        = "empty file provided"
	msgFileTooLarge     = "file size exceeds limit"
	msgTypeNotAllowed   = "file type not allowed"
	msgInvalidExtension = "invalid file extension"
	msgNameTooLong      = "filename too long"
)

// UploadInput carries one uploaded file through the validation pipeline.
type UploadInput struct {
	Data         []byte
	Size         int64
	MimeType     string
	OriginalName string
}

// UploadResult describes a stored object. URL is a derived, time-limited
// capability, not a stored field.
type UploadResult struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	OriginalName string `json:"originalName"`
}

// ThreatScanner is the pluggable malware/content scanning hook. The default
// implementation is a no-op; a real scanner (ClamAV or similar) can be wired
// in without touching the pipeline.
type ThreatScanner interface {
	Scan(ctx context.Context, name string, data []byte) error
}

// NoopScanner accepts every file.
type NoopScanner struct{}

// Scan implements ThreatScanner.
func (NoopScanner) Scan(ctx context.Context, name string, data []byte) error { return nil }

// objectAPI is the slice of the S3 client the service uses. Narrowing to an
// interface keeps the service testable with fakes.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// presignAPI mirrors the presign client surface the service uses.
type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Service is the upload gatekeeper. It is stateless; concurrency correctness
// is delegated to S3 itself.
type S3Service struct {
	client    objectAPI
	presigner presignAPI
	scanner   ThreatScanner
	bucket    string
	policy    config.UploadConfig
}

// NewS3Service builds the S3 client from configuration (static credentials,
// bounded retries, optional custom endpoint for S3-compatible stores) and
// returns the gatekeeper.
func NewS3Service(ctx context.Context, awsCfg *config.AWSConfig, policy *config.UploadConfig) (*S3Service, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			awsCfg.AccessKeyID, awsCfg.SecretAccessKey, "",
		)),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, apperror.NewConfigError("failed to load AWS configuration", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if awsCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
			// S3-compatible stores generally require path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Service{
		client:    client,
		presigner: s3.NewPresignClient(client),
		scanner:   NoopScanner{},
		bucket:    awsCfg.Bucket,
		policy:    *policy,
	}, nil
}

// WithScanner replaces the threat-scanning hook.
func (s *S3Service) WithScanner(scanner ThreatScanner) *S3Service {
	s.scanner = scanner
	return s
}

// UploadFile runs the validation pipeline, stores the file under a freshly
// generated key and returns the result together with a presigned retrieval
// URL. Storage failures surface as external-service errors and are not
// retried here beyond the SDK's own bounded retry policy.
func (s *S3Service) UploadFile(ctx context.Context, file UploadInput) (*UploadResult, error) {
	if err := s.validateFile(ctx, file); err != nil {
		return nil, err
	}

	key, err := generateSecureKey(file.OriginalName)
	if err != nil {
		return nil, apperror.NewInternalError("failed to generate storage key", err)
	}

	putCtx, cancel := context.WithTimeout(ctx, s.policy.UploadTimeout)
	defer cancel()

	_, err = s.client.PutObject(putCtx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(file.Data),
		ContentType:          aws.String(file.MimeType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
		ContentDisposition:   aws.String(fmt.Sprintf("attachment; filename=%q", file.OriginalName)),
		Metadata: map[string]string{
			"original-name": file.OriginalName,
			"upload-date":   time.Now().UTC().Format(time.RFC3339),
			"content-type":  file.MimeType,
			"file-size":     strconv.FormatInt(file.Size, 10),
		},
	})
	if err != nil {
		log.Printf("S3 upload failed for key %s: %v", key, err)
		return nil, apperror.NewExternalServiceError("failed to upload file to storage", err)
	}

	url, err := s.PresignedURL(ctx, key, 3600)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Key:          key,
		URL:          url,
		MimeType:     file.MimeType,
		Size:         file.Size,
		OriginalName: file.OriginalName,
	}, nil
}

// validateFile applies the safety gates in order, short-circuiting on the
// first failure. Each gate has its own stable message.
func (s *S3Service) validateFile(ctx context.Context, file UploadInput) error {
	if file.OriginalName == "" && len(file.Data) == 0 {
		return apperror.NewValidationError(msgNoFile, nil)
	}
	if file.Size == 0 {
		return apperror.NewValidationError(msgEmptyFile, nil)
	}
	if file.Size > s.policy.MaxFileSize {
		return apperror.NewValidationError(msgFileTooLarge, nil).
			WithDetails(fmt.Sprintf("file size exceeds %dMB limit", s.policy.MaxFileSize/1024/1024))
	}
	if !allowedMimeTypes[normalizeMime(file.MimeType)] {
		return apperror.NewValidationError(msgTypeNotAllowed, nil)
	}
	// Extension gate: the extension-inferred type must itself be allow-listed.
	// It is deliberately not compared to the declared type.
	ext := strings.ToLower(filepath.Ext(file.OriginalName))
	if !allowedMimeTypes[mimeTypeForExtension(ext)] {
		return apperror.NewValidationError(msgInvalidExtension, nil)
	}
	if len(file.OriginalName) > s.policy.MaxFileNameLength {
		return apperror.NewValidationError(msgNameTooLong, nil).
			WithDetails(fmt.Sprintf("filename exceeds %d characters", s.policy.MaxFileNameLength))
	}
	if err := s.scanner.Scan(ctx, file.OriginalName, file.Data); err != nil {
		return apperror.NewValidationError("file rejected by content scan", err)
	}
	return nil
}

// PresignedURL confirms the object exists and mints a retrieval URL that
// expires after ttlSeconds. A missing object is a NotFoundError.
func (s *S3Service) PresignedURL(ctx context.Context, key string, ttlSeconds int64) (string, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", apperror.NewNotFoundError("file not found or inaccessible", err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(time.Duration(ttlSeconds)*time.Second))
	if err != nil {
		return "", apperror.NewExternalServiceError("failed to generate presigned URL", err)
	}

	return req.URL, nil
}

// DeleteFile removes an object. S3's DeleteObject succeeds for absent keys,
// so deletion is idempotent on absence.
func (s *S3Service) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperror.NewExternalServiceError("failed to delete file", err)
	}
	return nil
}

// generateSecureKey derives a storage key that cannot collide in practice and
// is never a function of user-controlled input alone:
// uploads/<hex of 32 random bytes>-<8 hex chars of sha256(name+timestamp)><ext>.
func generateSecureKey(originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	digest := sha256.Sum256([]byte(originalName + strconv.FormatInt(time.Now().UnixMilli(), 10)))
	suffix := hex.EncodeToString(digest[:])[:8]

	return fmt.Sprintf("uploads/%s-%s%s", hex.EncodeToString(randomBytes), suffix, ext), nil
}

// mimeTypeForExtension maps a file extension to its MIME type, preferring the
// stdlib database and falling back to the fixed table above.
func mimeTypeForExtension(ext string) string {
	if ext == "" {
		return ""
	}
	if mt := normalizeMime(mime.TypeByExtension(ext)); mt != "" {
		return mt
	}
	return extensionMimeTypes[ext]
}

// normalizeMime strips any parameters ("; charset=...") from a MIME type.
func normalizeMime(mt string) string {
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
