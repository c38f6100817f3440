// Package email provides email delivery for presence summaries
package email

import (
	"fmt"
	"os"
	"strings"

	"github.com/resendlabs/resend-go"

	"github.com/FlapTrack/flaptrack-go/models"
)

type Client struct {
	resend    *resend.Client
	fromEmail string
	fromName  string
}

func NewClient() (*Client, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@yourdomain.com"
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "FlapTrack"
	}

	client := resend.NewClient(apiKey)

	return &Client{
		resend:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendPresenceSummary mails the compact summary of a computed report.
func (c *Client) SendPresenceSummary(to string, report *models.ReportData) error {
	subject := fmt.Sprintf("Presence summary %s to %s", report.FromDate, report.ToDate)

	request := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    SummaryBody(report),
	}

	_, err := c.resend.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("failed to send summary email: %w", err)
	}

	return nil
}

// SummaryBody builds the HTML body for a summary email.
func SummaryBody(report *models.ReportData) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<h1>Presence summary %s to %s</h1>", report.FromDate, report.ToDate))
	b.WriteString("<ul>")
	b.WriteString(fmt.Sprintf("<li>Time inside: %.1fh</li>", report.TotalTimeInside))
	b.WriteString(fmt.Sprintf("<li>Time outside: %.1fh</li>", report.TotalTimeOutside))
	b.WriteString(fmt.Sprintf("<li>Time unknown: %.1fh</li>", report.TotalTimeUnknown))
	b.WriteString(fmt.Sprintf("<li>Entries: %d, exits: %d</li>", report.TotalEntries, report.TotalExits))

	prey := 0
	for _, row := range report.MonthlyPreyCounts {
		prey += row.Count
	}
	if prey > 0 {
		b.WriteString(fmt.Sprintf("<li>Prey brought home: %d</li>", prey))
	}
	b.WriteString("</ul>")

	return b.String()
}
