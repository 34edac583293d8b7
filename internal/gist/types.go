package gist

import "time"

// File is one file of a gist as returned by the API.
type File struct {
	Filename  string `json:"filename"`
	Size      int    `json:"size"`
	Truncated bool   `json:"truncated"`
	RawURL    string `json:"raw_url"`
	Content   string `json:"content"`
}

// Gist is the subset of the gist resource the client reads.
type Gist struct {
	ID        string           `json:"id"`
	UpdatedAt time.Time        `json:"updated_at"`
	Files     map[string]*File `json:"files"`
}

type fileUpdate struct {
	Content string `json:"content"`
}

type updateRequest struct {
	Files map[string]fileUpdate `json:"files"`
}
