package crossref

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/papercat/papercat/internal/apiclient"
	"github.com/papercat/papercat/internal/record"
	"github.com/papercat/papercat/internal/source"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL),
		WithMailto("dev@example.org"),
		WithAPIOptions(apiclient.WithRateLimit(1000), apiclient.WithRetries(0, time.Millisecond)),
	)
}

func TestFetch_ByDOI(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works/10.5555/example" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("mailto") != "dev@example.org" {
			t.Errorf("mailto = %q", r.URL.Query().Get("mailto"))
		}
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "mailto:dev@example.org") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(`{"status":"ok","message":{
			"DOI":"10.5555/example",
			"title":["Attention Is All You Need"],
			"subject":["Computer Science","Artificial Intelligence"],
			"abstract":"<jats:title>Abstract</jats:title><jats:p>We propose the Transformer.</jats:p>"
		}}`))
	})

	p, err := c.Fetch(context.Background(), source.Query{Title: "ignored", DOI: "https://doi.org/10.5555/example"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p == nil {
		t.Fatal("Fetch() = nil payload")
	}
	if p.Title != "Attention Is All You Need" || p.DOI != "10.5555/example" {
		t.Errorf("payload identity = %q / %q", p.Title, p.DOI)
	}
	if p.Abstract != "We propose the Transformer." {
		t.Errorf("Abstract = %q", p.Abstract)
	}
	want := []string{"Computer Science", "Artificial Intelligence"}
	if !reflect.DeepEqual(p.Fields[record.FieldSubjects], want) {
		t.Errorf("subjects = %v, want %v", p.Fields[record.FieldSubjects], want)
	}
}

func TestFetch_ByTitle(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query.title"); got != "Deep Learning" {
			t.Errorf("query.title = %q", got)
		}
		if got := r.URL.Query().Get("rows"); got != "1" {
			t.Errorf("rows = %q", got)
		}
		w.Write([]byte(`{"status":"ok","message":{"total-results":1,"items":[{"DOI":"10.1038/nature14539","title":["Deep learning"],"subject":["Multidisciplinary"]}]}}`))
	})

	p, err := c.Fetch(context.Background(), source.Query{Title: "Deep Learning"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p == nil || p.DOI != "10.1038/nature14539" {
		t.Fatalf("Fetch() = %+v", p)
	}
	if !reflect.DeepEqual(p.Fields[record.FieldSubjects], []string{"Multidisciplinary"}) {
		t.Errorf("subjects = %v", p.Fields[record.FieldSubjects])
	}
}

func TestFetch_NoResult(t *testing.T) {
	tests := []struct {
		name    string
		query   source.Query
		handler http.HandlerFunc
	}{
		{"doi not found", source.Query{DOI: "10.1/missing"}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"empty search", source.Query{Title: "Nothing"}, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok","message":{"total-results":0,"items":[]}}`))
		}},
		{"empty query", source.Query{}, func(w http.ResponseWriter, r *http.Request) {
			t.Error("server should not be called for an empty query")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			p, err := c.Fetch(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if p != nil {
				t.Errorf("Fetch() = %+v, want nil", p)
			}
		})
	}
}

func TestFetch_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := c.Fetch(context.Background(), source.Query{DOI: "10.1/x"})
	if !errors.Is(err, apiclient.ErrInvalidResponse) {
		t.Errorf("Fetch() error = %v, want ErrInvalidResponse", err)
	}
}

func TestSource(t *testing.T) {
	if got := NewClient().Source(); got != record.SourceCrossref {
		t.Errorf("Source() = %q", got)
	}
}

func TestStripJATS(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "  Plain   text abstract ", "Plain text abstract"},
		{"title dropped", "<jats:title>Abstract</jats:title><jats:p>Body text.</jats:p>", "Body text."},
		{"multiple paragraphs", "<jats:p>First.</jats:p>\n<jats:p>Second <jats:italic>part</jats:italic>.</jats:p>", "First. Second part."},
		{"no paragraphs", "<jats:sec>Loose <b>text</b></jats:sec>", "Loose text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripJATS(tt.input); got != tt.want {
				t.Errorf("StripJATS() = %q, want %q", got, tt.want)
			}
		})
	}
}
