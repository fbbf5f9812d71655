package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Geo is where a sign-in came from, as far as the IP tells.
type Geo struct {
	City     string
	Region   string
	Country  string
	Timezone string
}

type GeoResolver interface {
	Lookup(ctx context.Context, ip string) (Geo, error)
}

// FormatGeo joins the non-empty parts as "City, Region, Country".
func FormatGeo(g Geo) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{g.City, g.Region, g.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

const defaultGeoEndpoint = "http://ip-api.com/json/"

// IPAPIResolver looks addresses up on ip-api.com (or BaseURL). Private,
// loopback and unparsable addresses are rejected without a request.
type IPAPIResolver struct {
	Client  *http.Client
	BaseURL string
}

func (r IPAPIResolver) Lookup(ctx context.Context, ip string) (Geo, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return Geo{}, fmt.Errorf("geo: invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return Geo{}, fmt.Errorf("geo: non-routable ip %q", ip)
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	base := r.BaseURL
	if base == "" {
		base = defaultGeoEndpoint
	}

	endpoint := strings.TrimRight(base, "/") + "/" + url.PathEscape(parsed.String()) +
		"?fields=status,message,country,regionName,city,timezone"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Geo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Geo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Geo{}, fmt.Errorf("geo: lookup status %d", resp.StatusCode)
	}

	var body struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
		City       string `json:"city"`
		Timezone   string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Geo{}, err
	}
	if !strings.EqualFold(body.Status, "success") {
		return Geo{}, fmt.Errorf("geo: lookup failed: %s", body.Message)
	}
	return Geo{City: body.City, Region: body.RegionName, Country: body.Country, Timezone: body.Timezone}, nil
}

// CachingResolver remembers successful lookups for ttl. Login notifications
// for the same address arrive in bursts and ip-api rate limits per minute.
type CachingResolver struct {
	next GeoResolver
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cachedGeo
}

type cachedGeo struct {
	geo     Geo
	expires time.Time
}

func NewCachingResolver(next GeoResolver, ttl time.Duration) *CachingResolver {
	return &CachingResolver{next: next, ttl: ttl, now: time.Now, entries: map[string]cachedGeo{}}
}

func (c *CachingResolver) Lookup(ctx context.Context, ip string) (Geo, error) {
	key := strings.TrimSpace(ip)
	now := c.now()
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && now.Before(e.expires) {
		c.mu.Unlock()
		return e.geo, nil
	}
	c.mu.Unlock()

	g, err := c.next.Lookup(ctx, key)
	if err != nil {
		return Geo{}, err
	}
	c.mu.Lock()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedGeo{geo: g, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return g, nil
}
