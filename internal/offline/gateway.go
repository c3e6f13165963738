package offline

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/repository"
)

// CacheVersion names the current cache generation. Bumping it retires every
// previously stored partition on the next Activate.
const CacheVersion = "v2"

// Partition names for the current generation
var (
	StaticPartition   = "static-" + CacheVersion
	APIPartition      = "api-" + CacheVersion
	ExternalPartition = "external-" + CacheVersion
)

// staticPrefixes and staticSuffixes classify app-shell requests
var staticPrefixes = []string{"/src/", "/assets/"}

var staticSuffixes = []string{".css", ".js", ".tsx", ".ts"}

// externalHosts are third-party origins served stale-while-revalidate
var externalHosts = []string{
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"cdn.jsdelivr.net",
}

// offlinePage is served to document requests when nothing else is available
const offlinePage = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>STEM Quest - Offline</title>
	<style>
		body { font-family: Arial, sans-serif; text-align: center; padding: 60px 20px; color: #333; }
		h1 { color: #4a90e2; }
	</style>
</head>
<body>
	<h1>You're offline</h1>
	<p>STEM Quest needs a connection for this page. Your progress is safe and will be here when you're back.</p>
</body>
</html>
`

// Gateway is a caching HTTP proxy in front of the app origin. Each request
// class gets its own strategy: app-shell assets are served cache-first, API
// calls network-first, and whitelisted external origins stale-while-
// revalidate. Responses are persisted so the app keeps working offline.
type Gateway struct {
	upstream *url.URL
	client   *http.Client
	cache    *repository.WebCacheRepository
}

// NewGateway creates a gateway proxying to the given upstream origin
func NewGateway(upstreamURL string, cache *repository.WebCacheRepository) (*Gateway, error) {
	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}

	return &Gateway{
		upstream: upstream,
		client:   &http.Client{Timeout: 30 * time.Second},
		cache:    cache,
	}, nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only GET requests are cacheable; everything else passes through
	if r.Method != http.MethodGet {
		g.passthrough(w, r)
		return
	}

	switch {
	case g.isStatic(r):
		g.cacheFirst(w, r, StaticPartition)
	case strings.HasPrefix(r.URL.Path, "/api/"):
		g.networkFirst(w, r, APIPartition)
	case g.isExternal(r):
		g.staleWhileRevalidate(w, r, ExternalPartition)
	default:
		g.networkFirst(w, r, StaticPartition)
	}
}

// Install precaches the app shell so the first offline visit already works
func (g *Gateway) Install(urls []string) error {
	for _, u := range urls {
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("invalid precache url %s: %w", u, err)
		}

		partition := StaticPartition
		if g.isExternal(req) {
			partition = ExternalPartition
		}

		cached, err := g.fetch(req)
		if err != nil {
			return fmt.Errorf("failed to precache %s: %w", u, err)
		}
		cached.Partition = partition

		if err := g.cache.Upsert(cached); err != nil {
			return fmt.Errorf("failed to store precached %s: %w", u, err)
		}
	}

	log.Printf("Precached %d urls", len(urls))
	return nil
}

// Activate retires partitions from older cache generations
func (g *Gateway) Activate() error {
	removed, err := g.cache.DeletePartitionsExcept([]string{
		StaticPartition, APIPartition, ExternalPartition,
	})
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		log.Printf("Removed stale cache partitions: %v", removed)
	}
	return nil
}

// cacheFirst serves from the cache and only reaches upstream on a miss
func (g *Gateway) cacheFirst(w http.ResponseWriter, r *http.Request, partition string) {
	key := cacheKey(r)

	cached, err := g.cache.Get(partition, key)
	if err != nil {
		log.Printf("Cache lookup failed for %s: %v", key, err)
	}
	if cached != nil {
		writeCached(w, cached)
		return
	}

	fresh, err := g.fetchAndStore(r, partition)
	if err != nil {
		g.serveFallback(w, r)
		return
	}
	writeCached(w, fresh)
}

// networkFirst tries upstream and falls back to the cache when it fails
func (g *Gateway) networkFirst(w http.ResponseWriter, r *http.Request, partition string) {
	fresh, err := g.fetchAndStore(r, partition)
	if err == nil {
		writeCached(w, fresh)
		return
	}

	cached, cerr := g.cache.Get(partition, cacheKey(r))
	if cerr == nil && cached != nil {
		writeCached(w, cached)
		return
	}

	g.serveFallback(w, r)
}

// staleWhileRevalidate serves the cached copy immediately and refreshes it
// in the background
func (g *Gateway) staleWhileRevalidate(w http.ResponseWriter, r *http.Request, partition string) {
	key := cacheKey(r)

	cached, err := g.cache.Get(partition, key)
	if err != nil {
		log.Printf("Cache lookup failed for %s: %v", key, err)
	}

	if cached != nil {
		writeCached(w, cached)

		refresh := r.Clone(r.Context())
		go func() {
			if _, err := g.fetchAndStoreDetached(refresh, partition); err != nil {
				log.Printf("Background refresh failed for %s: %v", key, err)
			}
		}()
		return
	}

	fresh, err := g.fetchAndStore(r, partition)
	if err != nil {
		g.serveFallback(w, r)
		return
	}
	writeCached(w, fresh)
}

// serveFallback scans every partition for any copy of the URL; document
// requests get the offline page as a last resort
func (g *Gateway) serveFallback(w http.ResponseWriter, r *http.Request) {
	cached, err := g.cache.GetAnyPartition(cacheKey(r))
	if err == nil && cached != nil {
		writeCached(w, cached)
		return
	}

	if isDocumentRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, offlinePage)
		return
	}

	http.Error(w, "offline and not cached", http.StatusServiceUnavailable)
}

// passthrough forwards a request to upstream without touching the cache
func (g *Gateway) passthrough(w http.ResponseWriter, r *http.Request) {
	resp, err := g.doUpstream(r)
	if err != nil {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// fetchAndStore fetches from upstream and persists successful responses
func (g *Gateway) fetchAndStore(r *http.Request, partition string) (*models.CachedResponse, error) {
	cached, err := g.fetch(r)
	if err != nil {
		return nil, err
	}
	cached.Partition = partition

	// Only successful responses are worth keeping
	if cached.Status == http.StatusOK {
		if err := g.cache.Upsert(cached); err != nil {
			log.Printf("Failed to store %s: %v", cached.URL, err)
		}
	}

	return cached, nil
}

// fetchAndStoreDetached is fetchAndStore for background refreshes, where
// the original request context may be gone by the time it runs
func (g *Gateway) fetchAndStoreDetached(r *http.Request, partition string) (*models.CachedResponse, error) {
	detached, err := http.NewRequest(r.Method, r.URL.String(), nil)
	if err != nil {
		return nil, err
	}
	detached.Host = r.Host
	detached.Header = r.Header.Clone()
	return g.fetchAndStore(detached, partition)
}

// fetch performs the upstream request and captures the full response
func (g *Gateway) fetch(r *http.Request) (*models.CachedResponse, error) {
	resp, err := g.doUpstream(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream body: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	return &models.CachedResponse{
		URL:         cacheKey(r),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Headers:     headers,
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

// doUpstream sends the request to the origin it targets: whitelisted
// external hosts are fetched directly, everything else goes to the app
// upstream. Absolute-form requests carry their host in r.URL; host-form
// requests only in r.Host, where https is assumed for external origins.
func (g *Gateway) doUpstream(r *http.Request) (*http.Response, error) {
	target := *r.URL
	if g.isExternal(r) {
		if target.Host == "" {
			target.Scheme = "https"
			target.Host = r.Host
		}
	} else {
		target.Scheme = g.upstream.Scheme
		target.Host = g.upstream.Host
	}

	req, err := http.NewRequest(r.Method, target.String(), r.Body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()
	req.Header.Del("Connection")

	return g.client.Do(req)
}

// isStatic reports whether a request targets the app shell
func (g *Gateway) isStatic(r *http.Request) bool {
	if g.isExternal(r) {
		return false
	}
	path := r.URL.Path
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, suffix := range staticSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// isExternal reports whether a request targets a whitelisted third-party host
func (g *Gateway) isExternal(r *http.Request) bool {
	host := r.URL.Host
	if host == "" {
		host = r.Host
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	for _, h := range externalHosts {
		if host == h {
			return true
		}
	}
	return false
}

// cacheKey is the stored lookup key for a request. External requests keep
// their absolute URL; same-origin requests are keyed by path and query.
func cacheKey(r *http.Request) string {
	if r.URL.IsAbs() {
		u := *r.URL
		u.Fragment = ""
		return u.String()
	}
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	return key
}

// isDocumentRequest reports whether the client asked for an HTML page
func isDocumentRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// writeCached writes a stored response to the client
func writeCached(w http.ResponseWriter, cached *models.CachedResponse) {
	for name, value := range cached.Headers {
		w.Header().Set(name, value)
	}
	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}
	w.WriteHeader(cached.Status)
	w.Write(cached.Body)
}

// copyHeader copies response headers for passthrough requests
func copyHeader(dst, src http.Header) {
	for name, values := range src {
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}
