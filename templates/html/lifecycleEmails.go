package templates

import (
	"fmt"
	"time"
)

// RenderMobilizationEmail generates the plain-text and HTML bodies for a
// mobilization notice.
func RenderMobilizationEmail(name, project, customer string, mobDate time.Time) (string, string) {
	plain := fmt.Sprintf(
		"Hi %s,\n\nYou have been mobilized to %s for %s, effective %s.\n\n"+
			"Please confirm your equipment checklist with dispatch before travel.\n\n"+
			"FieldServe Dispatch",
		name, project, customer, mobDate.Format("Monday, January 2, 2006"))

	body := fmt.Sprintf(
		"Hi %s,\n\nYou have been mobilized to the following project:\n\n"+
			"Project: %s\nCustomer: %s\nMobilization date: %s\n\n"+
			"Please confirm your equipment checklist with dispatch before travel.",
		name, project, customer, mobDate.Format("Monday, January 2, 2006"))

	return plain, RenderGenericEmail("You Have Been Mobilized", body)
}

// RenderDemobilizationEmail generates the plain-text and HTML bodies for a
// demobilization notice.
func RenderDemobilizationEmail(name, reason string, date time.Time) (string, string) {
	plain := fmt.Sprintf(
		"Hi %s,\n\nYour mobilization ended on %s (reason: %s).\n\n"+
			"Please return any assigned equipment to your branch office.\n\n"+
			"FieldServe Dispatch",
		name, date.Format("Monday, January 2, 2006"), reason)

	body := fmt.Sprintf(
		"Hi %s,\n\nYour mobilization ended on %s.\n\nReason: %s\n\n"+
			"Please return any assigned equipment to your branch office. "+
			"Open assignments stay on your record until checked back in.",
		name, date.Format("Monday, January 2, 2006"), reason)

	return plain, RenderGenericEmail("Your Mobilization Has Ended", body)
}

// RenderComplianceReminderEmail generates the plain-text and HTML bodies for a
// drug test reminder.
func RenderComplianceReminderEmail(name string, dueDate time.Time) (string, string) {
	plain := fmt.Sprintf(
		"Hi %s,\n\nYour next drug test is due by %s.\n\n"+
			"Inspectors without a current test cannot be mobilized. "+
			"Schedule your test with an approved collection site before the due date.\n\n"+
			"FieldServe Compliance",
		name, dueDate.Format("Monday, January 2, 2006"))

	body := fmt.Sprintf(
		"Hi %s,\n\nYour next drug test is due by %s.\n\n"+
			"Inspectors without a current test cannot be mobilized. "+
			"Schedule your test with an approved collection site before the due date.",
		name, dueDate.Format("Monday, January 2, 2006"))

	return plain, RenderGenericEmail("Drug Test Reminder", body)
}
