package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventInviteEmailData holds data for the new-event invitation email.
type EventInviteEmailData struct {
	EventID     string
	Title       string
	Date        string
	Location    string
	Description string
}

// ReminderEmailData holds data for the unanswered-event reminder email.
type ReminderEmailData struct {
	EventID  string
	Title    string
	Deadline string
}

// TaskAssignedEmailData holds data for the task-assigned email.
type TaskAssignedEmailData struct {
	TaskID string
	Title  string
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email     string
	FirstName string
}

// EmailService sends domain-level emails to recipient sets. Addresses are
// resolved from the roster, falling back to the identity provider for users
// not locally known. Every send is best-effort at the call site.
type EmailService interface {
	SendEventInvite(ctx context.Context, data *EventInviteEmailData, userIDs []string) error
	SendReminder(ctx context.Context, data *ReminderEmailData, userIDs []string) error
	SendTaskAssigned(ctx context.Context, data *TaskAssignedEmailData, userID string) error
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
}
