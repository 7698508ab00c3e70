package domain

import "fmt"

// EmailRecord is an immutable snapshot of an opened email message.
// It is captured once when the message is reported and owned by the
// review session for its lifetime.
type EmailRecord struct {
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	DateTime    string `json:"date_time"`
	MailLink    string `json:"mail_link,omitempty"`
}

// Sender returns the combined "Name <address>" form used in dataset entries.
func (e *EmailRecord) Sender() string {
	return fmt.Sprintf("%s <%s>", e.SenderName, e.SenderEmail)
}
