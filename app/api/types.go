package api

import (
	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, records []database.Record) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	ledger    database.Ledger
	generator GeneratorInterface
	channel   feed.Channel
	sources   []feed.Source
	feedItems int
}
