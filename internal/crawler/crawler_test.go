package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/jmylchreest/sitetext/internal/extract"
	"github.com/jmylchreest/sitetext/internal/store"
	"github.com/jmylchreest/sitetext/pkg/fetcher"
)

const testBase = "https://site.test/"

// fakeFetcher serves canned bodies and records every request.
type fakeFetcher struct {
	bodies  map[string]string
	fetched []string
	opts    []fetcher.Options
	onFetch func(url string)
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, opts fetcher.Options) (fetcher.Content, error) {
	f.fetched = append(f.fetched, url)
	f.opts = append(f.opts, opts)
	if f.onFetch != nil {
		f.onFetch(url)
	}
	body, ok := f.bodies[url]
	if !ok {
		return fetcher.Content{URL: url, StatusCode: http.StatusNotFound},
			&fetcher.StatusError{URL: url, StatusCode: http.StatusNotFound}
	}
	return fetcher.Content{URL: url, Body: []byte(body), StatusCode: http.StatusOK}, nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

// fakePDF treats the body as the extracted text unless it says "broken".
type fakePDF struct{}

func (fakePDF) Text(body []byte) (string, error) {
	if string(body) == "broken" {
		return "", errors.New("corrupt xref table")
	}
	return string(body), nil
}

func page(text string, hrefs ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body><p>" + text + "</p>")
	for _, h := range hrefs {
		fmt.Fprintf(&sb, `<a href="%s">link</a>`, h)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = testBase
	cfg.Delay = 0
	return cfg
}

func newTestCrawler(t *testing.T, f fetcher.Fetcher, cfg Config) (*Crawler, *store.Writer, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	w, err := store.NewWriter(fs, "texts", 0)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	return New(f, w, fakePDF{}, cfg), w, fs
}

func TestCrawl_DepthFirstOrder(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:       page("Portada del sitio de la licenciatura", "/a", "/b"),
		testBase + "a": page("Sección A con bastante texto útil", "/c", "/"),
		testBase + "b": page("Sección B con bastante texto útil", "/c"),
		testBase + "c": page("Sección C con bastante texto útil"),
	}}
	c, _, _ := newTestCrawler(t, f, testConfig())

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	want := []string{testBase, testBase + "a", testBase + "c", testBase + "b"}
	if fmt.Sprint(f.fetched) != fmt.Sprint(want) {
		t.Errorf("fetch order = %v, want %v", f.fetched, want)
	}
	if sum.Visited != 4 || sum.Saved != 4 {
		t.Errorf("summary = %+v, want 4 visited and 4 saved", sum)
	}
}

func TestCrawl_NeverFetchesOutsideBase(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase: page("Portada del sitio de la licenciatura",
			"https://other.test/x",
			"http://site.test/insecure",
			"https://site.test.evil/",
			"mailto:a@site.test",
			"/ok"),
		testBase + "ok": page("Página interna con texto suficiente"),
	}}
	c, _, _ := newTestCrawler(t, f, testConfig())

	if _, err := c.Crawl(context.Background(), testBase); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	for _, u := range f.fetched {
		if !strings.HasPrefix(u, testBase) {
			t.Errorf("fetched out-of-boundary URL %q", u)
		}
	}
	if len(f.fetched) != 2 {
		t.Errorf("fetched %v, want seed and /ok only", f.fetched)
	}
}

func TestCrawl_FragmentsNeverRefetch(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:       page("Portada del sitio de la licenciatura", "/", "#top", "/a#x", "/a"),
		testBase + "a": page("Página A con texto suficiente", "/a", "/#inicio"),
	}}
	c, _, _ := newTestCrawler(t, f, testConfig())

	if _, err := c.Crawl(context.Background(), testBase+"#intro"); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	counts := map[string]int{}
	for _, u := range f.fetched {
		counts[u]++
	}
	for u, n := range counts {
		if n > 1 {
			t.Errorf("%q fetched %d times", u, n)
		}
	}
	if counts[testBase] != 1 || counts[testBase+"a"] != 1 {
		t.Errorf("unexpected fetches %v", f.fetched)
	}
}

func TestCrawl_MaxPages(t *testing.T) {
	bodies := map[string]string{}
	for i := 0; i < 10; i++ {
		next := fmt.Sprintf("/p%d", i+1)
		key := fmt.Sprintf("%sp%d", testBase, i)
		if i == 0 {
			key = testBase
		}
		bodies[key] = page(fmt.Sprintf("Página número %d con texto suficiente", i), next)
	}
	f := &fakeFetcher{bodies: bodies}

	cfg := testConfig()
	cfg.MaxPages = 3
	c, _, fs := newTestCrawler(t, f, cfg)

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(f.fetched) != 3 {
		t.Errorf("fetched %d URLs, want 3", len(f.fetched))
	}
	if sum.Visited != 3 {
		t.Errorf("Visited = %d, want 3", sum.Visited)
	}

	files, _ := afero.ReadDir(fs, "texts")
	if len(files) > cfg.MaxPages {
		t.Errorf("wrote %d documents, cap is %d", len(files), cfg.MaxPages)
	}
}

func TestCrawl_FetchFailureIsNotFatal(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:             page("Portada del sitio de la licenciatura", "/missing", "/present"),
		testBase + "present": page("Esta página sí existe y tiene texto"),
	}}
	c, _, _ := newTestCrawler(t, f, testConfig())

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if sum.FetchErrors != 1 {
		t.Errorf("FetchErrors = %d, want 1", sum.FetchErrors)
	}
	if sum.Saved != 2 {
		t.Errorf("Saved = %d, want 2", sum.Saved)
	}
	if sum.Visited != 3 {
		t.Errorf("Visited = %d, want 3 (failed URLs still count)", sum.Visited)
	}
}

func TestCrawl_PDFsAreLeaves(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:                   page("Portada del sitio de la licenciatura", "/docs/plan.PDF", "/docs/roto.pdf"),
		testBase + "docs/plan.PDF": `<a href="/hidden">texto del plan de estudios en PDF</a>`,
		testBase + "docs/roto.pdf": "broken",
		testBase + "hidden":        page("Nunca debería visitarse esta página"),
	}}
	cfg := testConfig()
	c, w, fs := newTestCrawler(t, f, cfg)

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	for _, u := range f.fetched {
		if u == testBase+"hidden" {
			t.Error("links inside a PDF must not be followed")
		}
	}
	if sum.PDFErrors != 1 {
		t.Errorf("PDFErrors = %d, want 1", sum.PDFErrors)
	}

	got, err := afero.ReadFile(fs, w.Path("docs_plan_PDF"))
	if err != nil {
		t.Fatalf("PDF text not saved: %v", err)
	}
	if !strings.Contains(string(got), "plan de estudios") {
		t.Errorf("unexpected PDF document %q", got)
	}

	// PDF requests use the longer timeout.
	for i, u := range f.fetched {
		want := cfg.HTMLTimeout
		if IsPDF(u) {
			want = cfg.PDFTimeout
		}
		if f.opts[i].Timeout != want {
			t.Errorf("timeout for %s = %v, want %v", u, f.opts[i].Timeout, want)
		}
	}
}

func TestCrawl_ForwardsRequestOptions(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:                   page("Portada del sitio de la licenciatura", "/docs/plan.pdf"),
		testBase + "docs/plan.pdf": "Texto del plan de estudios en PDF",
	}}
	cfg := testConfig()
	cfg.UserAgent = "sitetext-test"
	cfg.Headers = map[string]string{"Accept-Language": "es-MX"}
	c, _, _ := newTestCrawler(t, f, cfg)

	if _, err := c.Crawl(context.Background(), testBase); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(f.opts) != 2 {
		t.Fatalf("requests = %d, want 2", len(f.opts))
	}
	for i, opts := range f.opts {
		if opts.UserAgent != "sitetext-test" {
			t.Errorf("request %d UserAgent = %q", i, opts.UserAgent)
		}
		if opts.Headers["Accept-Language"] != "es-MX" {
			t.Errorf("request %d Headers = %v", i, opts.Headers)
		}
	}
}

func TestCrawl_BackLinksNotRefetched(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:       page("Portada del sitio de la licenciatura", "/a", "/", "/#menu"),
		testBase + "a": page("Sección A con bastante texto útil", "/", "/a", "/"),
	}}
	c, _, _ := newTestCrawler(t, f, testConfig())

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	want := []string{testBase, testBase + "a"}
	if fmt.Sprint(f.fetched) != fmt.Sprint(want) {
		t.Errorf("fetch order = %v, want %v", f.fetched, want)
	}
	if sum.Visited != 2 {
		t.Errorf("Visited = %d, want 2", sum.Visited)
	}
}

func TestCrawl_NameCollisionFirstWriteWins(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:         page("Portada del sitio de la licenciatura", "/x.y", "/x_y"),
		testBase + "x.y": page("Contenido original que debe conservarse"),
		testBase + "x_y": page("Contenido nuevo que se debe descartar"),
	}}
	c, w, fs := newTestCrawler(t, f, testConfig())

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if sum.Existing != 1 {
		t.Errorf("Existing = %d, want 1", sum.Existing)
	}

	got, _ := afero.ReadFile(fs, w.Path("x_y"))
	if !strings.Contains(string(got), "original") || strings.Contains(string(got), "nuevo") {
		t.Errorf("collision overwrote the first document: %q", got)
	}
}

func TestCrawl_ShortPagesNotSaved(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:          page("Portada del sitio de la licenciatura", "/tiny"),
		testBase + "tiny": page("Hola"),
	}}
	c, w, fs := newTestCrawler(t, f, testConfig())

	sum, err := c.Crawl(context.Background(), testBase)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if sum.TooShort != 1 {
		t.Errorf("TooShort = %d, want 1", sum.TooShort)
	}
	if ok, _ := afero.Exists(fs, w.Path("tiny")); ok {
		t.Error("short page should not be written")
	}
}

func TestCrawl_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{
		bodies: map[string]string{
			testBase:       page("Portada del sitio de la licenciatura", "/a"),
			testBase + "a": page("Página A con bastante texto útil"),
		},
		onFetch: func(string) { cancel() },
	}
	c, w, fs := newTestCrawler(t, f, testConfig())

	sum, err := c.Crawl(ctx, testBase)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Crawl() error = %v, want context.Canceled", err)
	}
	if len(f.fetched) != 1 {
		t.Errorf("fetched %v, want only the seed", f.fetched)
	}
	if ok, _ := afero.Exists(fs, w.Path("index")); !ok || sum.Saved != 1 {
		t.Error("documents written before cancellation must be kept")
	}
}

func TestCrawl_DelayBetweenRequests(t *testing.T) {
	f := &fakeFetcher{bodies: map[string]string{
		testBase:       page("Portada del sitio de la licenciatura", "/a", "/b"),
		testBase + "a": page("Página A con bastante texto útil"),
		testBase + "b": page("Página B con bastante texto útil"),
	}}
	cfg := testConfig()
	cfg.Delay = 20 * time.Millisecond
	c, _, _ := newTestCrawler(t, f, cfg)

	start := time.Now()
	if _, err := c.Crawl(context.Background(), testBase); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 2*cfg.Delay {
		t.Errorf("three requests took %v, want at least %v", elapsed, 2*cfg.Delay)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing base", func(c *Config) { c.BaseURL = "" }, true},
		{"relative base", func(c *Config) { c.BaseURL = "cc.unison.mx" }, true},
		{"zero pages", func(c *Config) { c.MaxPages = 0 }, true},
		{"negative delay", func(c *Config) { c.Delay = -time.Second }, true},
		{"zero html timeout", func(c *Config) { c.HTMLTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCrawl_HTTPSite(t *testing.T) {
	pdf, err := os.ReadFile("../extract/testdata/plan.pdf")
	if err != nil {
		t.Fatalf("read pdf fixture: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(page("Licenciatura en Ciencias de la Computación",
			"/alumnos", "/docs/plan.pdf", "/no-existe", "https://example.com/")))
	})
	mux.HandleFunc("/alumnos", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page("Información para alumnos de nuevo ingreso", "/")))
	})
	mux.HandleFunc("/docs/plan.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig()
	cfg.BaseURL = srv.URL + "/"

	fs := afero.NewMemMapFs()
	w, err := store.NewWriter(fs, "texts", 0)
	if err != nil {
		t.Fatal(err)
	}
	c := New(fetcher.NewStatic(fetcher.StaticConfig{}), w, &extract.PDFExtractor{TempDir: t.TempDir()}, cfg)

	sum, err := c.Crawl(context.Background(), cfg.BaseURL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if sum.Visited != 4 {
		t.Errorf("Visited = %d, want 4", sum.Visited)
	}
	if sum.FetchErrors != 1 {
		t.Errorf("FetchErrors = %d, want 1 (the 404)", sum.FetchErrors)
	}
	for _, name := range []string{"index", "alumnos", "docs_plan_pdf"} {
		if ok, _ := afero.Exists(fs, w.Path(name)); !ok {
			t.Errorf("expected document %s to be saved", name)
		}
	}
}
