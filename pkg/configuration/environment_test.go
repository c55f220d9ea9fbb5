package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "ORGCHART_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "crud")
	requireMkdirAll(t, sub)

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(sub); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("ORGCHART_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("ORGCHART_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestLoad_ReadsOrgChartOptions(t *testing.T) {
	t.Setenv("LOG_PATH", filepath.Join(t.TempDir(), "logs", "orgchart.log"))
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "4100")
	t.Setenv("ORGCHART_SOURCE", " FILE ")
	t.Setenv("ORGCHART_SOURCE_FILE", "testdata/org.xlsx")
	t.Setenv("ORGCHART_CACHE", "none")
	t.Setenv("ORGCHART_CACHE_TTL", "90s")

	c, err := Load()
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, SourceFile, c.OrgChart.Source)
	require.Equal(t, CacheNone, c.OrgChart.Cache)
	require.Equal(t, 90*time.Second, c.OrgChart.CacheTTL)
	require.Equal(t, "localhost:4100", c.SocketAddress)
	require.Equal(t, logrus.DebugLevel, c.LogrusLogLevel())
	require.Contains(t, c.Database.Opts, "dbname=orgchart")
	require.NotNil(t, c.Logger())
}

func TestOrgChartOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    OrgChartOptions
		redis   string
		wantErr string
	}{
		{name: "defaults", opts: OrgChartOptions{Source: "db", Cache: "memory"}},
		{name: "file without path", opts: OrgChartOptions{Source: "file", Cache: "memory"}, wantErr: "ORGCHART_SOURCE_FILE"},
		{name: "unknown source", opts: OrgChartOptions{Source: "firebase", Cache: "memory"}, wantErr: "expected db|file"},
		{name: "redis without url", opts: OrgChartOptions{Source: "db", Cache: "redis"}, wantErr: "REDIS_URL"},
		{name: "redis with url", opts: OrgChartOptions{Source: "db", Cache: "Redis"}, redis: "redis://cache:6379/0"},
		{name: "unknown cache", opts: OrgChartOptions{Source: "db", Cache: "disk"}, wantErr: "expected memory|redis|none"},
		{name: "negative ttl", opts: OrgChartOptions{Source: "db", Cache: "none", CacheTTL: -time.Second}, wantErr: "non-negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate(tc.redis)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
