package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/rss-press/app/database"
)

// Channel describes the feed of published posts served by the status API.
type Channel struct {
	Title       string
	Link        string
	Description string
	SelfLink    string
	Version     string
}

type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Run renders ledger records, newest first, as an RSS 2.0 document.
func (g *Generator) Run(channel Channel, records []database.Record) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(channel.Title, "rss-press"), 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, "Recently published articles"), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	lastBuildDate := g.now()
	if len(records) > 0 {
		lastBuildDate = records[0].ProcessedAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("rss-press/%s", cmp.Or(channel.Version, "dev")), 4)

	for _, record := range records {
		g.writeItem(&buf, record)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, record database.Record) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(record.EntryKey))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", cmp.Or(record.EntryTitle, "Untitled"), 6)

	link := record.EntryLink
	if record.PostURL != nil && *record.PostURL != "" {
		link = *record.PostURL
	}
	g.writeElement(buf, "link", link, 6)

	if record.EntryLink != "" {
		g.writeElement(buf, "description", fmt.Sprintf("Source: %s", record.EntryLink), 6)
	}

	g.writeElement(buf, "pubDate", record.ProcessedAt.Format(time.RFC1123Z), 6)

	if g.isURL(record.FeedURL) {
		buf.WriteString(fmt.Sprintf("      <source url=\"%s\">", html.EscapeString(record.FeedURL)))
		xml.EscapeText(buf, []byte(record.FeedURL))
		buf.WriteString("</source>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
