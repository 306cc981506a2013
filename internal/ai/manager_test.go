package ai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	response  string
	err       error
	endpoint  string
	gotTokens int
}

func (p *fakeProvider) Name() string {
	return "fake"
}

func (p *fakeProvider) Generate(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	p.gotTokens = maxTokens
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *fakeProvider) Endpoint() string {
	return p.endpoint
}

func TestManagerGenerate(t *testing.T) {
	provider := &fakeProvider{response: "  an answer  "}
	m := NewManager(provider, "m1", ManagerConfig{Timeout: 5, MaxOutputTokens: 200})

	text, err := m.Generate(context.Background(), "prompt", 100)
	require.NoError(t, err)
	require.Equal(t, "an answer", text)
	require.Equal(t, 100, provider.gotTokens)
}

func TestManagerGenerateClampsTokens(t *testing.T) {
	provider := &fakeProvider{response: "x"}
	m := NewManager(provider, "m1", ManagerConfig{Timeout: 5, MaxOutputTokens: 200})

	_, err := m.Generate(context.Background(), "prompt", 5000)
	require.NoError(t, err)
	require.Equal(t, 200, provider.gotTokens)

	_, err = m.Generate(context.Background(), "prompt", 0)
	require.NoError(t, err)
	require.Equal(t, 200, provider.gotTokens)
}

func TestManagerGenerateErrors(t *testing.T) {
	m := NewManager(&fakeProvider{err: errors.New("down")}, "m1", ManagerConfig{Timeout: 5})
	_, err := m.Generate(context.Background(), "prompt", 10)
	require.Error(t, err)

	m = NewManager(&fakeProvider{response: "   "}, "m1", ManagerConfig{Timeout: 5})
	_, err = m.Generate(context.Background(), "prompt", 10)
	require.Error(t, err)
}

func TestManagerReachableHostedAPI(t *testing.T) {
	m := NewManager(&fakeProvider{endpoint: ""}, "m1", ManagerConfig{})
	require.True(t, m.Reachable())

	m = NewManager(&fakeProvider{endpoint: "https://api.example.com/v1"}, "m1", ManagerConfig{})
	require.True(t, m.Reachable())
}

func TestManagerReachableLoopbackProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	m := NewManager(&fakeProvider{endpoint: server.URL}, "m1", ManagerConfig{})
	require.True(t, m.Reachable())
}

func TestManagerUnreachableLoopback(t *testing.T) {
	// Grab a free port and close it again so nothing listens there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	m := NewManager(&fakeProvider{endpoint: "http://" + addr}, "m1", ManagerConfig{})
	require.False(t, m.Reachable())
	// Cached verdict.
	require.False(t, m.Reachable())
}

func TestProviderRegistry(t *testing.T) {
	_, err := NewProvider("no-such-provider", nil)
	require.Error(t, err)

	provider, err := NewProvider("ollama", map[string]interface{}{})
	require.NoError(t, err)
	require.Equal(t, "ollama", provider.Name())
	require.NotEmpty(t, provider.Endpoint())
}
