package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

// Paths of the fake upstream APIs; use ENAURL and NCBIURL as base URLs.
const (
	ENAPath  = "/ena/portal/api/"
	NCBIPath = "/entrez/eutils/"
)

var queryTerm = regexp.MustCompile(`(\w+)="([^"]*)"`)

// RecordedRequest is a request received by the fake upstream.
type RecordedRequest struct {
	Path string
	Form url.Values
}

// Upstream fakes the ENA portal search and NCBI efetch endpoints over a
// catalog of read_run rows and run files.
type Upstream struct {
	ENAURL  string
	NCBIURL string

	mu       sync.Mutex
	rows     []map[string]string
	files    map[string]RunFiles
	status   map[string]int
	blocked  map[string]bool
	requests []RecordedRequest
}

// NewUpstream starts a fake upstream that is closed when the test ends.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()

	u := &Upstream{
		files:  make(map[string]RunFiles),
		status:  make(map[string]int),
		blocked: make(map[string]bool),
	}

	r := mux.NewRouter()
	r.HandleFunc(ENAPath+"search", u.search).Methods(http.MethodPost)
	r.HandleFunc(NCBIPath+"efetch.fcgi", u.efetch).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u.ENAURL = srv.URL + ENAPath
	u.NCBIURL = srv.URL + NCBIPath

	return u
}

// AddRun adds a read_run row to the catalog.
func (u *Upstream) AddRun(row map[string]string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rows = append(u.rows, row)
}

// AddFiles sets the efetch files of a run.
func (u *Upstream) AddFiles(files RunFiles) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.files[files.Accession] = files
}

// SetStatus makes the endpoint ("search" or "efetch.fcgi") fail with status.
func (u *Upstream) SetStatus(endpoint string, status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status[endpoint] = status
}

// Block makes the endpoint hold every request until the client gives up.
func (u *Upstream) Block(endpoint string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.blocked[endpoint] = true
}

// Requests returns all recorded requests.
func (u *Upstream) Requests() []RecordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	result := make([]RecordedRequest, len(u.requests))
	copy(result, u.requests)
	return result
}

// RequestCount returns the number of requests made to endpoint.
func (u *Upstream) RequestCount(endpoint string) int {
	n := 0
	for _, r := range u.Requests() {
		if strings.HasSuffix(r.Path, "/"+endpoint) {
			n++
		}
	}
	return n
}

// record stores the request and reports an injected failure status.
func (u *Upstream) record(w http.ResponseWriter, r *http.Request, endpoint string) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	u.mu.Lock()
	u.requests = append(u.requests, RecordedRequest{Path: r.URL.Path, Form: r.PostForm})
	status := u.status[endpoint]
	blocked := u.blocked[endpoint]
	u.mu.Unlock()

	if blocked {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
		http.Error(w, http.StatusText(http.StatusGatewayTimeout), http.StatusGatewayTimeout)
		return false
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return false
	}
	return true
}

func (u *Upstream) search(w http.ResponseWriter, r *http.Request) {
	if !u.record(w, r, "search") {
		return
	}

	form := r.PostForm
	if form.Get("result") != "read_run" || form.Get("format") != "json" {
		http.Error(w, "unsupported search", http.StatusBadRequest)
		return
	}

	// field -> accepted values
	selected := make(map[string]map[string]bool)
	add := func(field, value string) {
		if selected[field] == nil {
			selected[field] = make(map[string]bool)
		}
		selected[field][value] = true
	}

	if typ := form.Get("includeAccessionType"); typ != "" {
		for _, acc := range strings.Split(form.Get("includeAccessions"), ",") {
			add(typ+"_accession", acc)
		}
	}
	for _, m := range queryTerm.FindAllStringSubmatch(form.Get("query"), -1) {
		add(m[1], m[2])
	}

	fields := strings.Split(form.Get("fields"), ",")
	out := []map[string]string{}

	u.mu.Lock()
	for _, row := range u.rows {
		match := false
		for field, values := range selected {
			if values[row[field]] {
				match = true
			}
		}
		if !match {
			continue
		}

		rec := make(map[string]string, len(fields))
		for _, f := range fields {
			rec[f] = row[f]
		}
		out = append(out, rec)
	}
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (u *Upstream) efetch(w http.ResponseWriter, r *http.Request) {
	if !u.record(w, r, "efetch.fcgi") {
		return
	}

	if r.PostForm.Get("db") != "sra" {
		w.Write([]byte(EfetchErrorXML("unsupported db")))
		return
	}

	var runs []RunFiles
	u.mu.Lock()
	for _, id := range strings.Split(r.PostForm.Get("id"), ",") {
		if f, ok := u.files[id]; ok {
			runs = append(runs, f)
		}
	}
	u.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(EfetchXML(runs...)))
}
