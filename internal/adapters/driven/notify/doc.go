// Package notify delivers report, ticket and session emails.
//
// SMTPNotifier sends through an SMTP relay (STARTTLS on 587, implicit TLS
// on 465). OutboxNotifier writes RFC 5322 .eml files to a directory and is
// used when SMTP is not configured, so commands stay usable offline.
package notify
