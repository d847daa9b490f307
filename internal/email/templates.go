package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"cetracker/internal/config"
	"cetracker/internal/models"
)

const siteTitle = "CE Tracker"

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0f766e; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #0f766e; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        table { width: 100%%; border-collapse: collapse; background: white; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #e5e7eb; }
        .warning { color: #d97706; font-weight: 600; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), siteTitle, content, siteTitle,
		html.EscapeString(t.cfg.FrontendURL), html.EscapeString(t.cfg.FrontendURL))
}

// RenewalReminder generates the reminder for one user covering every state
// with an upcoming renewal.
func (t *Templates) RenewalReminder(fullName string, due []models.RenewalReminder, now time.Time) (subject, htmlBody, textBody string) {
	total := 0
	for _, r := range due {
		total += r.Outstanding()
	}
	subject = fmt.Sprintf("[%s] %d CE hours due before renewal", siteTitle, total)

	greeting := "Hello,"
	if fullName != "" {
		greeting = fmt.Sprintf("Hello %s,", fullName)
	}

	var rows, lines strings.Builder
	for _, r := range due {
		days := r.DaysLeft(now)
		fmt.Fprintf(&rows, `
                <tr><td>%s</td><td>%s</td><td>%d of %d</td><td class="warning">%d</td><td>%s</td></tr>`,
			html.EscapeString(r.StateCode),
			r.RenewalDate.Format(time.DateOnly),
			r.HoursComplete, r.RequiredHours,
			r.Outstanding(),
			daysLabel(days),
		)
		fmt.Fprintf(&lines, "- %s: %d of %d hours complete, %d outstanding, renews %s (%s)\n",
			r.StateCode, r.HoursComplete, r.RequiredHours, r.Outstanding(),
			r.RenewalDate.Format(time.DateOnly), daysLabel(days))
	}

	content := fmt.Sprintf(`
        <p>%s</p>
        <p>Your license renewal is coming up and you still have <strong>%d</strong> CE hours to complete.</p>

        <table>
            <thead>
                <tr><th>State</th><th>Renewal</th><th>Completed</th><th>Outstanding</th><th>Time left</th></tr>
            </thead>
            <tbody>%s
            </tbody>
        </table>

        <p style="text-align: center;">
            <a href="%s" class="button">Find Courses</a>
        </p>
    `,
		html.EscapeString(greeting),
		total,
		rows.String(),
		html.EscapeString(t.cfg.FrontendURL),
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`%s

Your license renewal is coming up and you still have %d CE hours to complete.

%s
Find courses at: %s

--
%s`,
		greeting,
		total,
		lines.String(),
		t.cfg.FrontendURL,
		siteTitle,
	)

	return
}

func daysLabel(days int) string {
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
