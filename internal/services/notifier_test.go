package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func bookedEnrollment() *models.Enrollment {
	return &models.Enrollment{
		ID: 1,
		Course: &models.Course{
			ID:    42,
			Title: "First Aid <Basics>",
			Date:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		User: &models.UserSummary{Firstname: "John", Email: "john@example.com"},
	}
}

func TestSESNotifier_SendBookingConfirmation(t *testing.T) {
	client := &fakeSES{}
	n := newSESNotifier(client, "noreply@example.com", "https://app.example/", slog.Default())

	require.NoError(t, n.SendBookingConfirmation(context.Background(), bookedEnrollment()))

	require.NotNil(t, client.input)
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"john@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Booking confirmed: First Aid <Basics>", aws.ToString(client.input.Message.Subject.Data))
	assert.Contains(t, aws.ToString(client.input.Message.Body.Text.Data), "https://app.example/courses/42")
	assert.Contains(t, aws.ToString(client.input.Message.Body.Html.Data), "First Aid &lt;Basics&gt;")
}

func TestSESNotifier_SendError(t *testing.T) {
	n := newSESNotifier(&fakeSES{err: errors.New("throttled")}, "noreply@example.com", "", slog.Default())

	assert.Error(t, n.SendBookingCancellation(context.Background(), bookedEnrollment()))
}

func TestSESNotifier_NoRecipient(t *testing.T) {
	client := &fakeSES{}
	n := newSESNotifier(client, "noreply@example.com", "", slog.Default())

	e := bookedEnrollment()
	e.User = nil

	assert.Error(t, n.SendBookingConfirmation(context.Background(), e))
	assert.Nil(t, client.input)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(slog.Default())
	assert.NoError(t, n.SendBookingConfirmation(context.Background(), bookedEnrollment()))
	assert.NoError(t, n.SendBookingCancellation(context.Background(), bookedEnrollment()))
}
