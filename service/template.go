package service

import (
	"fmt"
	"html"
	"regexp"
)

// Notification templates are plain HTML strings with {{field}}
// placeholders. Rendering is a pure function: no I/O, no clock. Parameter
// keys must match placeholder names exactly.

// Reminder status values, selecting the subject-line wording
const (
	ReminderPendingSignature = "pending-signature"
	ReminderUnsigned         = "unsigned"
	ReminderExpiringSoon     = "expiring-soon"
)

var placeholderRE = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// renderTemplate substitutes {{field}} placeholders with HTML-escaped
// values. Unknown placeholders render as empty strings.
func renderTemplate(body string, params map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(body, func(m string) string {
		match := placeholderRE.FindStringSubmatch(m)
		if len(match) != 2 {
			return ""
		}
		if v, ok := params[match[1]]; ok {
			return html.EscapeString(v)
		}
		return ""
	})
}

const contractSentBody = `<html>
<body>
<h2>New Performance Contract</h2>
<p>Hi {{recipientName}},</p>
<p>{{senderName}} has prepared the contract <strong>{{contractTitle}}</strong>
for the performance at {{eventVenue}} on {{eventDate}}.</p>
<p>Please review and sign the contract at your earliest convenience.</p>
<p>Contract reference: {{contractId}}</p>
<p>— The StageLink Team</p>
</body>
</html>`

// ContractSentEmail renders the contract-created notification
func ContractSentEmail(params map[string]string) (subject, body string) {
	subject = fmt.Sprintf("New contract: %s", params["contractTitle"])
	return subject, renderTemplate(contractSentBody, params)
}

const signatureRequestBody = `<html>
<body>
<h2>Signature Requested</h2>
<p>Hi {{recipientName}},</p>
<p>Your signature is requested on the contract <strong>{{contractTitle}}</strong>
for the performance at {{eventVenue}} on {{eventDate}}.</p>
<p>Please sign before <strong>{{signDeadline}}</strong>.</p>
<p>Contract reference: {{contractId}}</p>
<p>— The StageLink Team</p>
</body>
</html>`

// SignatureRequestEmail renders the signature-request notification
func SignatureRequestEmail(params map[string]string) (subject, body string) {
	subject = fmt.Sprintf("Signature requested: %s", params["contractTitle"])
	return subject, renderTemplate(signatureRequestBody, params)
}

const signatureReceivedBody = `<html>
<body>
<h2>Signature Received</h2>
<p>Hi {{recipientName}},</p>
<p>A signature has been recorded on the contract <strong>{{contractTitle}}</strong>.</p>
<p>Signature certificate: <strong>{{certificateNumber}}</strong></p>
<p>You can verify this certificate at any time from your dashboard.</p>
<p>Contract reference: {{contractId}}</p>
<p>— The StageLink Team</p>
</body>
</html>`

// SignatureReceivedEmail renders the signature-completion notification
func SignatureReceivedEmail(params map[string]string) (subject, body string) {
	subject = fmt.Sprintf("Signature received: %s", params["contractTitle"])
	return subject, renderTemplate(signatureReceivedBody, params)
}

const reminderBody = `<html>
<body>
<h2>Upcoming Event Reminder</h2>
<p>Hi {{recipientName}},</p>
<p>The performance <strong>{{contractTitle}}</strong> at {{eventVenue}} is
coming up in <strong>{{daysUntilEvent}}</strong> day(s), on {{eventDate}}.</p>
<p>Contract reference: {{contractId}}</p>
<p>— The StageLink Team</p>
</body>
</html>`

const cancellationBody = `<html>
<body>
<h2>Booking Cancelled</h2>
<p>Hi {{recipientName}},</p>
<p>The booking <strong>{{contractTitle}}</strong> at {{eventVenue}} on
{{eventDate}} has been cancelled.</p>
<p>No further reminders will be sent for this booking.</p>
<p>Contract reference: {{contractId}}</p>
<p>— The StageLink Team</p>
</body>
</html>`

// ReminderEmail renders the reminder notification. The status selects the
// subject-line wording; unknown statuses fall back to a neutral subject.
func ReminderEmail(status string, params map[string]string) (subject, body string) {
	title := params["contractTitle"]
	switch status {
	case ReminderPendingSignature:
		subject = fmt.Sprintf("Action needed: %s awaits your signature", title)
	case ReminderUnsigned:
		subject = fmt.Sprintf("Unsigned contract: %s", title)
	case ReminderExpiringSoon:
		subject = fmt.Sprintf("Expiring soon: %s", title)
	default:
		subject = fmt.Sprintf("Reminder: %s", title)
	}
	return subject, renderTemplate(reminderBody, params)
}

// CancellationEmail renders the booking-cancelled notification
func CancellationEmail(params map[string]string) (subject, body string) {
	subject = fmt.Sprintf("Booking cancelled: %s", params["contractTitle"])
	return subject, renderTemplate(cancellationBody, params)
}
