package images

type Origin string

const (
	OriginRSS      Origin = "rss"
	OriginPexels   Origin = "pexels"
	OriginUnsplash Origin = "unsplash"
)

// Candidate is an image found for an entry but not yet downloaded.
type Candidate struct {
	URL             string
	AltText         string
	Attribution     string
	PhotographerURL string
	Origin          Origin
}

// Image is a downloaded and validated candidate ready for upload.
type Image struct {
	Candidate
	Data        []byte
	Filename    string
	ContentType string
}
