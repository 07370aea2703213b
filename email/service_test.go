package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/bazaar-go/apperror"
)

type fakeSES struct {
	sendErr error

	lastSend      *ses.SendEmailInput
	lastTemplated *ses.SendTemplatedEmailInput
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.lastSend = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-123")}, nil
}

func (f *fakeSES) SendTemplatedEmail(ctx context.Context, params *ses.SendTemplatedEmailInput, optFns ...func(*ses.Options)) (*ses.SendTemplatedEmailOutput, error) {
	f.lastTemplated = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &ses.SendTemplatedEmailOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSend_UsesDefaultSender(t *testing.T) {
	t.Parallel()

	fake := &fakeSES{}
	svc := &EmailService{client: fake, defaultFrom: "noreply@example.com"}

	id, err := svc.Send(context.Background(), SendInput{
		To:       []string{"customer@example.com"},
		Subject:  "Order shipped",
		TextBody: "Your order is on its way.",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)

	require.NotNil(t, fake.lastSend)
	assert.Equal(t, "noreply@example.com", aws.ToString(fake.lastSend.Source))
	assert.Equal(t, []string{"customer@example.com"}, fake.lastSend.Destination.ToAddresses)
	require.NotNil(t, fake.lastSend.Message.Body.Text)
	assert.Equal(t, "Your order is on its way.", aws.ToString(fake.lastSend.Message.Body.Text.Data))
	assert.Nil(t, fake.lastSend.Message.Body.Html)
}

func TestSend_ExplicitSenderWins(t *testing.T) {
	t.Parallel()

	fake := &fakeSES{}
	svc := &EmailService{client: fake, defaultFrom: "noreply@example.com"}

	_, err := svc.Send(context.Background(), SendInput{
		To:       []string{"a@example.com"},
		From:     "shop@example.com",
		Subject:  "Hi",
		HTMLBody: "<p>Hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", aws.ToString(fake.lastSend.Source))
	require.NotNil(t, fake.lastSend.Message.Body.Html)
}

func TestSend_FailureIsExternalServiceError(t *testing.T) {
	t.Parallel()

	svc := &EmailService{client: &fakeSES{sendErr: errors.New("throttled")}, defaultFrom: "noreply@example.com"}

	_, err := svc.Send(context.Background(), SendInput{To: []string{"a@example.com"}, Subject: "x", TextBody: "y"})
	require.Error(t, err)

	appErr, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, 502, appErr.StatusCode())
}

func TestSendTemplated_SerializesData(t *testing.T) {
	t.Parallel()

	fake := &fakeSES{}
	svc := &EmailService{client: fake, defaultFrom: "noreply@example.com"}

	id, err := svc.SendTemplated(context.Background(), SendTemplatedInput{
		To:           []string{"customer@example.com"},
		TemplateName: "order-confirmation",
		TemplateData: map[string]interface{}{"order_id": 42},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-456", id)

	require.NotNil(t, fake.lastTemplated)
	assert.Equal(t, "order-confirmation", aws.ToString(fake.lastTemplated.Template))
	assert.JSONEq(t, `{"order_id":42}`, aws.ToString(fake.lastTemplated.TemplateData))
}
