package cfg

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webSection struct {
	Host        string        `mapstructure:"host" default:"0.0.0.0"`
	Port        int           `mapstructure:"port" default:"8080"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" default:"5s"`
	Tags        []string      `mapstructure:"tags"`
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadReadsFromEnv(t *testing.T) {
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("WEB_READ_TIMEOUT", "2s")

	out, err := Load[webSection]("web", WithDefaults[webSection]("web"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out.Port != 9090 {
		t.Fatalf("expected port from env, got %d", out.Port)
	}
	if out.ReadTimeout != 2*time.Second {
		t.Fatalf("expected read timeout from env, got %s", out.ReadTimeout)
	}
	if out.Host != "0.0.0.0" {
		t.Fatalf("expected default host, got %q", out.Host)
	}
}

func TestLoadReadsFromToml(t *testing.T) {
	path := writeFile(t, "config.toml", []byte("[web]\nhost = \"127.0.0.1\"\nport = 3000\ntags = \"a,b\"\n"))

	out, err := Load[webSection]("web", WithFile(path), WithNoEnv(), WithDefaults[webSection]("web"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", out.Host)
	assert.Equal(t, 3000, out.Port)
	assert.Equal(t, 5*time.Second, out.ReadTimeout)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.toml", []byte("[web]\nport = 3000\n"))
	t.Setenv("APP_WEB_PORT", "4000")

	out, err := Load[webSection]("web", WithFile(path), WithEnvPrefix("APP"))
	require.NoError(t, err)
	assert.Equal(t, 4000, out.Port)
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	out, err := Load[webSection]("web", WithFile(missing), WithNoEnv(), WithDefault("web.port", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Port)

	_, err = Load[webSection]("web", WithFile(missing), WithRequired())
	require.Error(t, err)
}

func TestLoadStripsByteOrderMark(t *testing.T) {
	content := append([]byte("\xEF\xBB\xBF"), []byte("[web]\nport = 7000\n")...)
	path := writeFile(t, "config.toml", content)

	out, err := Load[webSection]("web", WithFile(path), WithNoEnv())
	require.NoError(t, err)
	assert.Equal(t, 7000, out.Port)
}

func TestTagDefaults(t *testing.T) {
	type root struct {
		Web  webSection `mapstructure:"web"`
		Name string     `mapstructure:"name" default:"svc"`
		skip string     `default:"x"`
	}
	got := TagDefaults[root]("")
	assert.Equal(t, map[string]any{
		"web.host":         "0.0.0.0",
		"web.port":         "8080",
		"web.read_timeout": "5s",
		"name":             "svc",
	}, got)
}

func TestWatcherReloads(t *testing.T) {
	path := writeFile(t, "config.toml", []byte("[web]\nport = 1\n"))

	var (
		mu  sync.Mutex
		got []int
	)
	w := NewWatcher[webSection]("web", nil, WithFile(path), WithNoEnv()).WithDebounce(0)
	require.NoError(t, w.Watch(func(s webSection) {
		mu.Lock()
		got = append(got, s.Port)
		mu.Unlock()
	}))

	require.NoError(t, os.WriteFile(path, []byte("[web]\nport = 2\n"), 0o600))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherNeedsFile(t *testing.T) {
	err := NewWatcher[webSection]("web", nil).Watch(func(webSection) {})
	require.Error(t, err)
}
