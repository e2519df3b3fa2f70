package notify

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/rss-press/app/tasks"
)

func testStats() *tasks.RunStats {
	return &tasks.RunStats{
		Processed: 2,
		Skipped:   3,
		Errors:    1,
		Published: []tasks.PublishedArticle{
			{Title: "Council <Approves> Budget", URL: "https://site.example.com/?p=1", FeedName: "gazette"},
			{Title: "Road Work Begins", URL: "https://site.example.com/?p=2", FeedName: "herald"},
		},
	}
}

func TestBuildSummary(t *testing.T) {
	subject, body, err := BuildSummary("TippahNews", testStats())
	require.NoError(t, err)

	assert.Equal(t, "TippahNews: 2 New Articles Published", subject)
	assert.Contains(t, body, `<a href="https://site.example.com/?p=1" class="article-title">Council &lt;Approves&gt; Budget</a>`)
	assert.Contains(t, body, "From: herald")
	assert.Contains(t, body, "Duplicates Skipped: 3")
	assert.Contains(t, body, "Errors: 1")
}

func TestBuildSummary_Singular(t *testing.T) {
	stats := testStats()
	stats.Published = stats.Published[:1]

	subject, _, err := BuildSummary("TippahNews", stats)
	require.NoError(t, err)
	assert.Equal(t, "TippahNews: 1 New Article Published", subject)
}

func TestBuildSummary_NoArticles(t *testing.T) {
	subject, body, err := BuildSummary("TippahNews", &tasks.RunStats{})
	require.NoError(t, err)

	assert.Equal(t, "TippahNews: No New Articles (Run Complete)", subject)
	assert.Contains(t, body, "No New Articles")
}

func TestMailer_Send(t *testing.T) {
	mailer := NewMailer(Settings{
		Server:   "smtp.example.com",
		Port:     587,
		Username: "bot@example.com",
		Password: "secret",
		To:       "editor@example.com",
		SiteName: "TippahNews",
	})
	mailer.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	}

	require.NoError(t, mailer.Send(testStats()))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"editor@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: TippahNews: 2 New Articles Published\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.Contains(t, gotMsg, "Date: Wed, 01 May 2024 08:00:00 +0000\r\n")

	headers, _, found := strings.Cut(gotMsg, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, headers, "To: editor@example.com")
}

func TestMailer_SendError(t *testing.T) {
	mailer := NewMailer(Settings{Server: "smtp.example.com", Port: 587, To: "editor@example.com"})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}

	err := mailer.Send(testStats())
	assert.ErrorContains(t, err, "failed to send email")
}
