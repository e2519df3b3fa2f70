package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/rss-press/app/tasks"
)

type Settings struct {
	Server   string
	Port     int
	Username string
	Password string
	To       string
	SiteName string
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends the run summary over SMTP. smtp.SendMail upgrades to TLS
// when the server offers STARTTLS.
type Mailer struct {
	settings Settings
	send     sendFunc
	now      func() time.Time
}

func NewMailer(settings Settings) *Mailer {
	return &Mailer{
		settings: settings,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

func (m *Mailer) Send(stats *tasks.RunStats) error {
	subject, body, err := BuildSummary(m.settings.SiteName, stats)
	if err != nil {
		return err
	}

	msg := m.message(subject, body)
	addr := net.JoinHostPort(m.settings.Server, strconv.Itoa(m.settings.Port))
	auth := smtp.PlainAuth("", m.settings.Username, m.settings.Password, m.settings.Server)

	slog.Info("Sending run summary", "to", m.settings.To, "subject", subject)

	if err := m.send(addr, auth, m.settings.Username, []string{m.settings.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (m *Mailer) message(subject, body string) []byte {
	var buf bytes.Buffer

	headers := []string{
		"From: " + m.settings.Username,
		"To: " + m.settings.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"Date: " + m.now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}

	buf.WriteString(strings.Join(headers, "\r\n"))
	buf.WriteString("\r\n\r\n")
	buf.WriteString(body)

	return buf.Bytes()
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.header { background: #1a365d; color: white; padding: 20px; text-align: center; }
.content { padding: 20px; }
.article { background: #f7fafc; border-left: 4px solid #3182ce; padding: 15px; margin: 10px 0; }
.article-title { color: #2c5282; font-size: 16px; font-weight: bold; text-decoration: none; }
.article-feed { color: #718096; font-size: 12px; }
.stats { background: #edf2f7; padding: 15px; margin-top: 20px; border-radius: 5px; }
.footer { text-align: center; color: #a0aec0; font-size: 12px; padding: 20px; }
</style>
</head>
<body>
<div class="header"><h1>{{.SiteName}} Update</h1></div>
<div class="content">
{{- if .Articles}}
<h2>New Articles Published</h2>
{{- range .Articles}}
<div class="article">
<a href="{{.URL}}" class="article-title">{{.Title}}</a>
<div class="article-feed">From: {{.FeedName}}</div>
</div>
{{- end}}
{{- else}}
<h2>No New Articles</h2>
<p>No new articles were found in the configured feeds within the recency window.</p>
{{- end}}
<div class="stats">
<strong>Run Statistics:</strong><br>
Articles Published: {{len .Articles}}<br>
Duplicates Skipped: {{.Skipped}}<br>
Errors: {{.Errors}}
</div>
</div>
<div class="footer"><p>This is an automated notification from rss-press</p></div>
</body>
</html>
`))

// BuildSummary renders the subject and HTML body for a finished run.
func BuildSummary(siteName string, stats *tasks.RunStats) (string, string, error) {
	count := len(stats.Published)

	var subject string
	switch count {
	case 0:
		subject = fmt.Sprintf("%s: No New Articles (Run Complete)", siteName)
	case 1:
		subject = fmt.Sprintf("%s: 1 New Article Published", siteName)
	default:
		subject = fmt.Sprintf("%s: %d New Articles Published", siteName, count)
	}

	var body bytes.Buffer
	err := summaryTemplate.Execute(&body, map[string]any{
		"SiteName": siteName,
		"Articles": stats.Published,
		"Skipped":  stats.Skipped,
		"Errors":   stats.Errors,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render summary: %w", err)
	}

	return subject, body.String(), nil
}
