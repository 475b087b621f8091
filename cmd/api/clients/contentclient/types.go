package contentclient

import "encoding/json"

// Document is a raw document as returned by the content API. Data is kept
// undecoded: shaping it into view models is the normalizer's job.
type Document struct {
	ID                   string          `json:"id"`
	UID                  *string         `json:"uid"`
	Type                 string          `json:"type"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// Response is one page of a search. NextPage is an opaque, directly fetchable
// URL and is nil on the last page.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type Ordering struct {
	Field     string
	Direction Direction
}

// FirstPublicationDesc / FirstPublicationAsc are the orderings of the publication timeline.
var (
	FirstPublicationDesc = Ordering{Field: "document.first_publication_date", Direction: Desc}
	FirstPublicationAsc  = Ordering{Field: "document.first_publication_date", Direction: Asc}
)

// QueryOptions mirrors the search parameters of the content API.
// An empty Ref resolves to the published (master) ref.
type QueryOptions struct {
	PageSize  int
	Page      int
	Orderings []Ordering
	After     string
	Ref       string
}

// Ref is one entry of the API root's refs list.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiRoot struct {
	Refs []Ref `json:"refs"`
}
