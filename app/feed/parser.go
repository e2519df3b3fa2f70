package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:    feed.Title,
		Link:     feed.Link,
		Language: feed.Language,
		FeedType: feed.FeedType,
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item, feed.FeedType))
	}

	return metadata, entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, feedType string) Entry {
	entry := Entry{
		Title:        strings.TrimSpace(item.Title),
		Link:         strings.TrimSpace(item.Link),
		Content:      item.Content,
		Summary:      item.Description,
		Published:    item.PublishedParsed,
		Updated:      item.UpdatedParsed,
		PublishedRaw: strings.TrimSpace(item.Published),
		UpdatedRaw:   strings.TrimSpace(item.Updated),
		Authors:      p.extractAuthors(item),
		Categories:   item.Categories,
		Media:        p.extractMedia(item),
	}

	if feedType == "atom" {
		entry.ID = strings.TrimSpace(item.GUID)
	} else {
		entry.GUID = strings.TrimSpace(item.GUID)
	}

	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0 {
		entry.CreatedRaw = strings.TrimSpace(item.DublinCoreExt.Date[0])
	}

	if entry.Published != nil {
		published := entry.Published.UTC()
		entry.Published = &published
	}
	if entry.Updated != nil {
		updated := entry.Updated.UTC()
		entry.Updated = &updated
	}

	return entry
}

func (p *Parser) extractMedia(item *gofeed.Item) []Media {
	var media []Media

	if mediaExt, ok := item.Extensions["media"]; ok {
		media = append(media, mediaFromExtensions(mediaExt["content"], MediaContent)...)
		media = append(media, mediaFromExtensions(mediaExt["thumbnail"], MediaThumbnail)...)

		for _, group := range mediaExt["group"] {
			media = append(media, mediaFromExtensions(group.Children["content"], MediaContent)...)
			media = append(media, mediaFromExtensions(group.Children["thumbnail"], MediaThumbnail)...)
		}
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil || enclosure.URL == "" {
			continue
		}
		media = append(media, Media{
			URL:  strings.TrimSpace(enclosure.URL),
			Type: strings.ToLower(strings.TrimSpace(enclosure.Type)),
			Kind: MediaEnclosure,
		})
	}

	if item.Image != nil && item.Image.URL != "" {
		media = append(media, Media{
			URL:  strings.TrimSpace(item.Image.URL),
			Type: "image/*",
			Kind: MediaLink,
		})
	}

	return media
}

func mediaFromExtensions(extensions []ext.Extension, kind MediaKind) []Media {
	media := make([]Media, 0, len(extensions))
	for _, extension := range extensions {
		url := strings.TrimSpace(extension.Attrs["url"])
		if url == "" {
			continue
		}
		media = append(media, Media{
			URL:    url,
			Type:   strings.ToLower(strings.TrimSpace(extension.Attrs["type"])),
			Medium: strings.ToLower(strings.TrimSpace(extension.Attrs["medium"])),
			Kind:   kind,
		})
	}
	return media
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				authorStr := p.formatAuthor(author.Name, author.Email)
				if authorStr != "" {
					authors = append(authors, authorStr)
				}
			}
		}
	} else if item.Author != nil {
		authorStr := p.formatAuthor(item.Author.Name, item.Author.Email)
		if authorStr != "" {
			authors = append(authors, authorStr)
		}
	}

	return authors
}

func (p *Parser) formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name != "" && email != "" {
		return fmt.Sprintf("%s (%s)", email, name)
	} else if name != "" {
		return name
	} else if email != "" {
		return email
	}

	return ""
}
