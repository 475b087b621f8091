// Package contentclienttest provides an in-process fake of the content API for tests.
package contentclienttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"spacetravelling/cmd/api/clients/contentclient"
)

const (
	MasterRef = "master-ref"
	apiPath   = "/api/v2"
)

var (
	atPattern       = regexp.MustCompile(`at\(([^,]+),"((?:[^"\\]|\\.)*)"\)`)
	orderingPattern = regexp.MustCompile(`^\[([^ \]]+)( desc)?\]$`)
	unquoter        = strings.NewReplacer(`\"`, `"`, `\\`, `\`)
)

// Server answers the API root and document search endpoints over a fixed
// document set. Drafts registered under a ref overlay the published set.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	docs      []contentclient.Document
	drafts    map[string][]contentclient.Document
	requests  []url.Values
	failCode  int
	failAfter int
}

func NewServer(docs ...contentclient.Document) *Server {
	s := &Server{docs: docs, drafts: map[string][]contentclient.Document{}}
	mux := http.NewServeMux()
	mux.HandleFunc(apiPath, s.handleRoot)
	mux.HandleFunc(apiPath+"/documents/search", s.handleSearch)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the API endpoint to hand to contentclient.New.
func (s *Server) Endpoint() string {
	return s.URL + apiPath
}

// AddDraft makes doc visible (replacing a published doc with the same id) when
// searching with ref.
func (s *Server) AddDraft(ref string, doc contentclient.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[ref] = append(s.drafts[ref], doc)
}

// FailWith makes every search after the first `after` ones answer with status code.
// A zero code disables failures.
func (s *Server) FailWith(code, after int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCode = code
	s.failAfter = after
}

// SearchRequests returns the query parameters of every search received so far.
func (s *Server) SearchRequests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"refs": []contentclient.Ref{{ID: "master", Ref: MasterRef, Label: "Master", IsMasterRef: true}},
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, q)
	seen := len(s.requests)
	failCode, failAfter := s.failCode, s.failAfter
	docs := s.visible(q.Get("ref"))
	s.mu.Unlock()

	if failCode != 0 && seen > failAfter {
		http.Error(w, "injected failure", failCode)
		return
	}
	if docs == nil {
		http.Error(w, `{"message":"unknown ref"}`, http.StatusBadRequest)
		return
	}

	docs = filter(docs, q.Get("q"))

	if o := q.Get("orderings"); o != "" {
		m := orderingPattern.FindStringSubmatch(o)
		if m == nil || m[1] != "document.first_publication_date" {
			http.Error(w, `{"message":"unsupported ordering"}`, http.StatusBadRequest)
			return
		}
		desc := m[2] != ""
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := deref(docs[i].FirstPublicationDate), deref(docs[j].FirstPublicationDate)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	if after := q.Get("after"); after != "" {
		for i, d := range docs {
			if d.ID == after {
				docs = docs[i+1:]
				break
			}
		}
	}

	pageSize := atoiDefault(q.Get("pageSize"), 20)
	page := atoiDefault(q.Get("page"), 1)
	total := len(docs)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	resp := contentclient.Response{
		Page:             page,
		ResultsPerPage:   pageSize,
		ResultsSize:      end - start,
		TotalResultsSize: total,
		TotalPages:       totalPages,
		Results:          append([]contentclient.Document{}, docs[start:end]...),
	}
	if page < totalPages {
		next := s.pageURL(r, page+1)
		resp.NextPage = &next
	}
	if page > 1 {
		prev := s.pageURL(r, page-1)
		resp.PrevPage = &prev
	}
	writeJSON(w, resp)
}

func (s *Server) visible(ref string) []contentclient.Document {
	docs := append([]contentclient.Document{}, s.docs...)
	if ref == MasterRef {
		return docs
	}
	drafts, ok := s.drafts[ref]
	if !ok {
		return nil
	}
	for _, d := range drafts {
		replaced := false
		for i := range docs {
			if docs[i].ID == d.ID {
				docs[i] = d
				replaced = true
			}
		}
		if !replaced {
			docs = append(docs, d)
		}
	}
	return docs
}

func (s *Server) pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return s.URL + r.URL.Path + "?" + q.Encode()
}

func filter(docs []contentclient.Document, q string) []contentclient.Document {
	out := docs[:0:0]
	matches := atPattern.FindAllStringSubmatch(q, -1)
	for _, d := range docs {
		ok := true
		for _, m := range matches {
			field, value := m[1], unquoter.Replace(m[2])
			switch {
			case field == "document.type":
				ok = ok && d.Type == value
			case field == "document.id":
				ok = ok && d.ID == value
			case strings.HasSuffix(field, ".uid"):
				ok = ok && deref(d.UID) == value
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
