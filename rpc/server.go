package rpc

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"studbook/config"
	"studbook/log"
	"studbook/mail"
)

// Client is an asset ledger reached over JSON-RPC.
type Client struct {
	client  *fasthttp.Client
	timeout time.Duration

	// servers stores all ledger rpc urls with their health.
	// Unreachable servers are skipped until TraceServers sees them again.
	servers map[string]bool
	sLock   sync.Mutex
}

// NewClient returns a client balancing over urls, all assumed healthy.
func NewClient(urls []string) *Client {
	c := &Client{
		client:  &fasthttp.Client{},
		timeout: 20 * time.Second,
	}
	c.SetServers(urls)
	return c
}

// SetServers replaces the node list. Nodes already known keep their health.
func (c *Client) SetServers(urls []string) {
	c.sLock.Lock()
	defer c.sLock.Unlock()

	servers := make(map[string]bool, len(urls))
	for _, url := range urls {
		healthy, ok := c.servers[url]
		servers[url] = !ok || healthy
	}
	c.servers = servers
}

// getServer randomly returns one of the healthy servers not in skip.
func (c *Client) getServer(skip map[string]bool) (string, bool) {
	c.sLock.Lock()
	defer c.sLock.Unlock()

	candidates := []string{}

	for url, healthy := range c.servers {
		if !healthy || skip[url] {
			continue
		}

		// Prefer localhost rpc server if valid.
		if strings.Contains(url, "127.0.0.1") ||
			strings.Contains(url, "localhost") {
			candidates = append(candidates, url)
		}

		candidates = append(candidates, url)
	}

	l := len(candidates)
	if l == 0 {
		return "", false
	}

	return candidates[rand.Intn(l)], true
}

func (c *Client) serverUnavailable(url string) {
	c.sLock.Lock()
	defer c.sLock.Unlock()

	// Incase server changed(e.g., reloaded due to config file change).
	if _, ok := c.servers[url]; ok {
		c.servers[url] = false
	}
}

// ServerStatus returns a copy of the health of every node.
func (c *Client) ServerStatus() map[string]bool {
	c.sLock.Lock()
	defer c.sLock.Unlock()

	status := make(map[string]bool, len(c.servers))
	for url, healthy := range c.servers {
		status[url] = healthy
	}
	return status
}

// PrintServerStatus logs the health of every node.
func (c *Client) PrintServerStatus() {
	status := c.ServerStatus()

	urls := make([]string, 0, len(status))
	for url := range status {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	for _, url := range urls {
		log.Printf("%s: healthy=%v\n", url, status[url])
	}
}

// TraceServers keeps node health and the node list in sync with config.
func (c *Client) TraceServers() {
	defer mail.AlertIfErr()

	for {
		c.RefreshServers(config.GetRPCs())

		time.Sleep(3 * time.Second)
	}
}

// RefreshServers pings every url and returns how many answered.
func (c *Client) RefreshServers(urls []string) int {
	// It takes time to ping all servers.
	health := c.ping(urls)

	c.sLock.Lock()
	defer c.sLock.Unlock()

	alive := 0
	c.servers = health
	for _, healthy := range health {
		if healthy {
			alive++
		}
	}

	return alive
}

type serverInfo struct {
	url     string
	healthy bool
}

func (c *Client) ping(urls []string) map[string]bool {
	ch := make(chan serverInfo, len(urls))

	for _, url := range urls {
		go func(url string) {
			_, err := c.getVersionFrom(url)
			ch <- serverInfo{
				url:     url,
				healthy: err == nil,
			}
		}(url)
	}

	health := make(map[string]bool)

	for range urls {
		s := <-ch
		health[s.url] = s.healthy
	}

	return health
}
