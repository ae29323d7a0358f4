package templates

import "fmt"

// LeadNotificationProps carries the contact-form fields into the
// notification email.
type LeadNotificationProps struct {
	Name          string
	Email         string
	Phone         string
	Message       string
	TreatmentSlug string
}

// GetLeadNotificationContent builds the HTML body for a new-enquiry email.
// All fields are visitor-supplied and pass through the escaping paragraph
// component.
func GetLeadNotificationContent(props LeadNotificationProps) string {
	content := GetParagraph("You have a new enquiry from the website contact form.")
	content += GetParagraph(fmt.Sprintf("Name: %s", props.Name))
	content += GetParagraph(fmt.Sprintf("Email: %s", props.Email))

	if props.Phone != "" {
		content += GetParagraph(fmt.Sprintf("Phone: %s", props.Phone))
	}
	if props.TreatmentSlug != "" {
		content += GetParagraph(fmt.Sprintf("Treatment of interest: %s", props.TreatmentSlug))
	}

	content += GetParagraph("Message:")
	content += GetParagraph(props.Message)

	return content
}
