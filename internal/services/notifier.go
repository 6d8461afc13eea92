package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Notifier tells students about their bookings. Delivery is best effort:
// callers log a failure and carry on.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, enrollment *models.Enrollment) error
	SendBookingCancellation(ctx context.Context, enrollment *models.Enrollment) error
}

// sesSender is the subset of the SES client used here
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends booking emails through AWS SES
type SESNotifier struct {
	client      sesSender
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

// NewSESNotifier loads the default AWS credential chain for region
func NewSESNotifier(ctx context.Context, region, fromAddress, baseURL string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newSESNotifier(ses.NewFromConfig(cfg), fromAddress, baseURL, logger), nil
}

func newSESNotifier(client sesSender, fromAddress, baseURL string, logger *slog.Logger) *SESNotifier {
	return &SESNotifier{
		client:      client,
		fromAddress: fromAddress,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}
}

// SendBookingConfirmation emails the student that the booking went through
func (n *SESNotifier) SendBookingConfirmation(ctx context.Context, e *models.Enrollment) error {
	return n.send(ctx, e, "Booking confirmed", "You are booked onto")
}

// SendBookingCancellation emails the student that the booking was cancelled
func (n *SESNotifier) SendBookingCancellation(ctx context.Context, e *models.Enrollment) error {
	return n.send(ctx, e, "Booking cancelled", "Your booking was cancelled for")
}

func (n *SESNotifier) send(ctx context.Context, e *models.Enrollment, subjectPrefix, lead string) error {
	if e == nil || e.User == nil || e.User.Email == "" || e.Course == nil {
		return fmt.Errorf("enrollment has no recipient")
	}

	when := e.Course.Date.UTC().Format(time.RFC1123)
	link := fmt.Sprintf("%s/courses/%d", n.baseURL, e.Course.ID)

	textBody := fmt.Sprintf("Hello %s,\n\n%s %q on %s.\n\nCourse details: %s\n",
		e.User.Firstname, lead, e.Course.Title, when, link)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>Hello %s,</p>
    <p>%s <strong>%s</strong> on %s.</p>
    <p><a href="%s">View course details</a></p>
    <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
</body>
</html>
`, html.EscapeString(e.User.Firstname), lead, html.EscapeString(e.Course.Title), when, link)

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{e.User.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subjectPrefix + ": " + e.Course.Title),
			},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error("failed to send email via SES",
			slog.String("email", pkglogger.SanitizedEmail(e.User.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("booking email sent",
		slog.String("email", pkglogger.SanitizedEmail(e.User.Email)),
		slog.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

// LogNotifier writes notifications to the log instead of sending them
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendBookingConfirmation(_ context.Context, e *models.Enrollment) error {
	n.logger.Info("booking confirmation (email disabled)", slog.Int64("enrollment_id", e.ID))
	return nil
}

func (n *LogNotifier) SendBookingCancellation(_ context.Context, e *models.Enrollment) error {
	n.logger.Info("booking cancellation (email disabled)", slog.Int64("enrollment_id", e.ID))
	return nil
}
