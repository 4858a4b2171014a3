package upstream

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Kruglikle/Free-room-MIET/pkg/cache"
	"github.com/Kruglikle/Free-room-MIET/pkg/config"
)

// Client talks to the MIET schedule service. A single semaphore bounds the
// number of in-flight schedule requests across all batches; transport
// settings (IPv4 pinning, TLS verification, bound local address, timeout,
// user agent) are taken from the configuration once at construction.
type Client struct {
	cfg   *config.Config
	cache *cache.Cache[*Schedule]
	sem   chan struct{}
}

// NewClient creates a client. cache may be nil, in which case every fetch
// goes to the network.
func NewClient(cfg *config.Config, c *cache.Cache[*Schedule]) *Client {
	width := cfg.MaxConcurrency
	if width < 1 {
		width = 1
	}
	return &Client{
		cfg:   cfg,
		cache: c,
		sem:   make(chan struct{}, width),
	}
}

// HTTPClient builds a connection pool from the client's transport settings.
// FetchAll shares one pool across the whole batch; FetchOne and the
// discovery helpers open their own.
func (c *Client) HTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 30 * time.Second}
	if addr := parseLocalAddr(c.cfg.LocalAddr); addr != nil {
		dialer.LocalAddr = addr
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if c.cfg.ForceIPv4 {
				network = "tcp4"
			}
			return dialer.DialContext(ctx, network, addr)
		},
		Proxy: http.ProxyFromEnvironment,
	}
	if c.cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Timeout:   c.cfg.Timeout,
		Transport: transport,
	}
}

// parseLocalAddr interprets "host" or "host:port"; an unparsable port means
// port 0 (pick any).
func parseLocalAddr(value string) *net.TCPAddr {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	host := value
	port := 0
	if i := strings.LastIndex(value, ":"); i >= 0 {
		host = value[:i]
		if p, err := strconv.Atoi(value[i+1:]); err == nil {
			port = p
		}
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	return &net.TCPAddr{IP: ip, Port: port}
}

// FetchOne returns one group's schedule, or nil if the fetch failed.
func (c *Client) FetchOne(ctx context.Context, group string) *Schedule {
	return c.getSchedule(ctx, c.HTTPClient(), group)
}

// FetchAll fetches every group's schedule concurrently. The result has the
// same length and order as groups, with nil in place of failed fetches; one
// group failing never affects its siblings.
func (c *Client) FetchAll(ctx context.Context, groups []string) []*Schedule {
	if len(groups) == 0 {
		return nil
	}

	httpClient := c.HTTPClient()
	results := make([]*Schedule, len(groups))

	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func(i int, group string) {
			defer wg.Done()
			results[i] = c.getSchedule(ctx, httpClient, group)
		}(i, group)
	}
	wg.Wait()

	return results
}

// getSchedule consults the cache first; a nil (failed) fetch is never
// cached, so the next call retries the network.
func (c *Client) getSchedule(ctx context.Context, httpClient *http.Client, group string) *Schedule {
	fetch := func() (*Schedule, bool) {
		schedule, err := c.fetchSchedule(ctx, httpClient, group)
		if err != nil {
			log.Printf("failed to fetch schedule for group %s: %v", group, err)
			return nil, false
		}
		return schedule, true
	}

	if c.cache == nil {
		schedule, ok := fetch()
		if !ok {
			return nil
		}
		return schedule
	}

	schedule, ok := c.cache.GetOrSet(group, fetch)
	if !ok {
		return nil
	}
	return schedule
}

func (c *Client) fetchSchedule(ctx context.Context, httpClient *http.Client, group string) (*Schedule, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	body, err := c.postForm(ctx, httpClient, c.cfg.ScheduleURL, url.Values{"group": {group}})
	if err != nil {
		return nil, err
	}
	return DecodeSchedule(body)
}

// ProbeGroup checks whether a candidate group name is real: the schedule
// endpoint answers with a non-empty pair catalog for known groups. Used by
// brute-force discovery, which runs under its own semaphore, so this method
// deliberately bypasses the client's.
func (c *Client) ProbeGroup(ctx context.Context, httpClient *http.Client, group string) bool {
	body, err := c.postForm(ctx, httpClient, c.cfg.ScheduleURL, url.Values{"group": {group}})
	if err != nil {
		return false
	}
	schedule, err := DecodeSchedule(body)
	if err != nil {
		return false
	}
	return len(schedule.Times) > 0
}

// ListGroups asks the groups endpoint for the flat list of group names.
func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	body, err := c.postForm(ctx, c.HTTPClient(), c.cfg.GroupsURL, nil)
	if err != nil {
		return nil, err
	}
	var groups []string
	if err := json.Unmarshal(body, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups JSON: %w", err)
	}
	return groups, nil
}

// SchedulePage downloads the public schedule page for HTML scraping.
func (c *Client) SchedulePage(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.PageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.cfg.PageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d when fetching %s", resp.StatusCode, c.cfg.PageURL)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) postForm(ctx context.Context, httpClient *http.Client, rawURL string, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d when fetching %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(resp.Body)
}
