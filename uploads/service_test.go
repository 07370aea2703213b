package uploads

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bazaar-go/apperror"
	"github.com/user/bazaar-go/config"
)

type fakeObjectAPI struct {
	putErr  error
	headErr error
	delErr  error

	lastPut *s3.PutObjectInput
	lastDel *s3.DeleteObjectInput
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastPut = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.lastDel = params
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresignAPI struct {
	url string
	err error
}

func (f *fakePresignAPI) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: f.url}, nil
}

func newTestService(client *fakeObjectAPI, presigner *fakePresignAPI) *S3Service {
	return &S3Service{
		client:    client,
		presigner: presigner,
		scanner:   NoopScanner{},
		bucket:    "test-bucket",
		policy: config.UploadConfig{
			MaxFileSize:       10 * 1024 * 1024,
			MaxFileNameLength: 100,
			UploadTimeout:     time.Second,
		},
	}
}

func validInput() UploadInput {
	return UploadInput{
		Data:         []byte("fake png bytes"),
		Size:         14,
		MimeType:     "image/png",
		OriginalName: "photo.png",
	}
}

func TestUploadFile_StoresWithSecureKey(t *testing.T) {
	t.Parallel()

	client := &fakeObjectAPI{}
	svc := newTestService(client, &fakePresignAPI{url: "https://signed.example/x"})

	result, err := svc.UploadFile(context.Background(), validInput())
	require.NoError(t, err)

	// uploads/<64 hex chars>-<8 hex chars>.png
	assert.Regexp(t, regexp.MustCompile(`^uploads/[0-9a-f]{64}-[0-9a-f]{8}\.png$`), result.Key)
	assert.Equal(t, "https://signed.example/x", result.URL)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, "photo.png", result.OriginalName)

	require.NotNil(t, client.lastPut)
	assert.Equal(t, "test-bucket", aws.ToString(client.lastPut.Bucket))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, client.lastPut.ServerSideEncryption)
	assert.Equal(t, "photo.png", client.lastPut.Metadata["original-name"])
}

func TestUploadFile_KeysNeverCollide(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeObjectAPI{}, &fakePresignAPI{url: "https://signed.example/x"})

	first, err := svc.UploadFile(context.Background(), validInput())
	require.NoError(t, err)
	second, err := svc.UploadFile(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
}

func TestUploadFile_ValidationGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*UploadInput)
		message string
	}{
		{"missing file", func(in *UploadInput) { in.Data = nil; in.OriginalName = ""; in.Size = 0 }, msgNoFile},
		{"empty file", func(in *UploadInput) { in.Size = 0 }, msgEmptyFile},
		{"oversized file", func(in *UploadInput) { in.Size = 10*1024*1024 + 1 }, msgFileTooLarge},
		{"mime not allowed", func(in *UploadInput) { in.MimeType = "application/zip" }, msgTypeNotAllowed},
		{"extension not allowed", func(in *UploadInput) { in.OriginalName = "payload.exe" }, msgInvalidExtension},
		{"no extension", func(in *UploadInput) { in.OriginalName = "noext" }, msgInvalidExtension},
		{"name too long", func(in *UploadInput) { in.OriginalName = strings.Repeat("a", 100) + ".png" }, msgNameTooLong},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeObjectAPI{}
			svc := newTestService(client, &fakePresignAPI{url: "u"})

			in := validInput()
			tt.mutate(&in)

			_, err := svc.UploadFile(context.Background(), in)
			require.Error(t, err)
			assert.True(t, apperror.IsValidationError(err))

			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, appErr.Message)

			// A rejected file must never reach storage.
			assert.Nil(t, client.lastPut)
		})
	}
}

func TestUploadFile_DeclaredMimeWithParameters(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeObjectAPI{}, &fakePresignAPI{url: "u"})

	in := validInput()
	in.MimeType = "image/png; charset=binary"

	_, err := svc.UploadFile(context.Background(), in)
	assert.NoError(t, err)
}

type rejectScanner struct{}

func (rejectScanner) Scan(ctx context.Context, name string, data []byte) error {
	return errors.New("malware signature found")
}

func TestUploadFile_ScannerHookRejects(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeObjectAPI{}, &fakePresignAPI{url: "u"}).WithScanner(rejectScanner{})

	_, err := svc.UploadFile(context.Background(), validInput())
	require.Error(t, err)
	assert.True(t, apperror.IsValidationError(err))
}

func TestUploadFile_StoreFailureIsExternalServiceError(t *testing.T) {
	t.Parallel()

	client := &fakeObjectAPI{putErr: errors.New("connection reset")}
	svc := newTestService(client, &fakePresignAPI{url: "u"})

	_, err := svc.UploadFile(context.Background(), validInput())
	require.Error(t, err)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 502, appErr.StatusCode())
}

func TestPresignedURL_MissingObjectIsNotFound(t *testing.T) {
	t.Parallel()

	client := &fakeObjectAPI{headErr: errors.New("NotFound: 404")}
	svc := newTestService(client, &fakePresignAPI{url: "u"})

	_, err := svc.PresignedURL(context.Background(), "uploads/absent", 3600)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPresignedURL_ReturnsSignedURL(t *testing.T) {
	t.Parallel()

	svc := newTestService(&fakeObjectAPI{}, &fakePresignAPI{url: "https://signed.example/key"})

	url, err := svc.PresignedURL(context.Background(), "uploads/present", 60)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/key", url)
}

func TestDeleteFile(t *testing.T) {
	t.Parallel()

	client := &fakeObjectAPI{}
	svc := newTestService(client, &fakePresignAPI{url: "u"})

	require.NoError(t, svc.DeleteFile(context.Background(), "uploads/some-key"))
	require.NotNil(t, client.lastDel)
	assert.Equal(t, "uploads/some-key", aws.ToString(client.lastDel.Key))

	client.delErr = errors.New("access denied")
	err := svc.DeleteFile(context.Background(), "uploads/other")
	require.Error(t, err)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 502, appErr.StatusCode())
}

func TestMimeTypeForExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/jpeg", mimeTypeForExtension(".jpg"))
	assert.Equal(t, "application/pdf", mimeTypeForExtension(".pdf"))
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		mimeTypeForExtension(".docx"))
	assert.Equal(t, "", mimeTypeForExtension(""))
}
