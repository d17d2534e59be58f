package notification

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// KindPatientOnboarded is sent once a patient's login, profile and wallet all exist.
	KindPatientOnboarded = "patient_onboarded"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// Welcome builds the onboarding message sent to a patient's mobile number.
func Welcome(mobile, name string) Message {
	return Message{
		Kind:        KindPatientOnboarded,
		Destination: mobile,
		Body:        fmt.Sprintf("Hi %s, your Retain Dental rewards account is ready. Sign in with your mobile number.", name),
	}
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
