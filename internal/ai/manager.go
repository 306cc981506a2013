package ai

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeoutSeconds = 45
	probeTimeout          = 500 * time.Millisecond
	probeCacheTTL         = 30 * time.Second
)

type ManagerConfig struct {
	Timeout         int
	MaxOutputTokens int
}

// Manager wraps a provider with per-call timeouts and output-length caps,
// and answers the reachability question for local backends.
type Manager struct {
	provider IProvider
	model    string
	cfg      ManagerConfig

	probeMu   sync.Mutex
	probeAt   time.Time
	probeOK   bool
	probeDone bool
}

func NewManager(provider IProvider, model string, cfg ManagerConfig) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeoutSeconds
	}
	return &Manager{provider: provider, model: model, cfg: cfg}
}

func (m *Manager) Name() string {
	return m.provider.Name()
}

func (m *Manager) Model() string {
	return m.model
}

// Generate issues one generation call with a bounded timeout. The timeout
// must leave headroom under any front-door request budget so the extractive
// fallback can still run after a miss.
func (m *Manager) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 || (m.cfg.MaxOutputTokens > 0 && maxTokens > m.cfg.MaxOutputTokens) {
		maxTokens = m.cfg.MaxOutputTokens
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(m.cfg.Timeout)*time.Second)
	defer cancel()
	resp, err := m.provider.Generate(ctx, m.model, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp)
	if text == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return text, nil
}

// Reachable reports whether the backend endpoint can be dialed. Hosted APIs
// (no fixed endpoint) are assumed reachable; loopback endpoints are probed
// with a short dial so a missing local model server does not cost a full
// generation timeout. Probe results are cached briefly.
func (m *Manager) Reachable() bool {
	endpoint := m.provider.Endpoint()
	if endpoint == "" {
		return true
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return true
	}
	host := u.Hostname()
	ip := net.ParseIP(host)
	if host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return true
	}

	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	if m.probeDone && time.Since(m.probeAt) < probeCacheTTL {
		return m.probeOK
	}
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), probeTimeout)
	if err == nil {
		conn.Close()
	}
	m.probeDone = true
	m.probeAt = time.Now()
	m.probeOK = err == nil
	return m.probeOK
}
