package composefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCompose mirrors the shape of the embedded stack template: an app
// service with a declared container_name and a db service without one.
const sampleCompose = `services:
  app:
    build:
      context: .
      dockerfile: Dockerfile
    container_name: laraup-app
    ports:
      - "8000:8000"
    volumes:
      - ../codesrc:/app
      - caddy_data:/data
    depends_on:
      - db
  db:
    image: mariadb:11
    ports:
      - "127.0.0.1:3306:3306"
  worker:
    image: mariadb:11
    ports:
      - "9000"
`

// writeCompose writes a compose file into a temp dir and returns its path.
func writeCompose(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad parses a realistic compose file and checks service discovery.
func TestLoad(t *testing.T) {
	stack, err := Load(writeCompose(t, sampleCompose))
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "db", "worker"}, stack.ServiceNames())
	assert.True(t, stack.HasService("app"))
	assert.False(t, stack.HasService("redis"))
}

// TestLoad_Errors covers the missing-file and empty-stack cases.
func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = Load(writeCompose(t, "version: '3'\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares no services")

	_, err = Load(writeCompose(t, "services: [not a map\n"))
	assert.Error(t, err)
}

// TestStack_ContainerName verifies the naming rules: a declared
// container_name wins, otherwise compose's <project>-<service>-1
// default applies.
func TestStack_ContainerName(t *testing.T) {
	stack, err := Load(writeCompose(t, sampleCompose))
	require.NoError(t, err)

	assert.Equal(t, "laraup-app", stack.ContainerName("myproj", "app"))
	assert.Equal(t, "myproj-db-1", stack.ContainerName("myproj", "db"))
	assert.Equal(t, "myproj-cache-1", stack.ContainerName("myproj", "cache"))
}

// TestStack_BindSource verifies bind-mount extraction: the host side of
// the /app mount is found, named volumes are skipped, and access-mode
// suffixes do not break the match.
func TestStack_BindSource(t *testing.T) {
	stack, err := Load(writeCompose(t, sampleCompose))
	require.NoError(t, err)

	src, ok := stack.BindSource("app", "/app")
	assert.True(t, ok)
	assert.Equal(t, "../codesrc", src)

	_, ok = stack.BindSource("app", "/data")
	assert.False(t, ok, "named volumes are not bind mounts")

	_, ok = stack.BindSource("db", "/app")
	assert.False(t, ok)

	_, ok = stack.BindSource("missing", "/app")
	assert.False(t, ok)

	withMode, err := Load(writeCompose(t, `services:
  app:
    volumes:
      - /srv/code:/app:ro
`))
	require.NoError(t, err)
	src, ok = withMode.BindSource("app", "/app")
	assert.True(t, ok)
	assert.Equal(t, "/srv/code", src)
}

// TestLoad_LongSyntaxVolumes verifies that long-syntax volume
// declarations do not fail parsing; they are simply invisible to
// BindSource.
func TestLoad_LongSyntaxVolumes(t *testing.T) {
	stack, err := Load(writeCompose(t, `services:
  app:
    volumes:
      - type: bind
        source: ../codesrc
        target: /app
`))
	require.NoError(t, err)

	_, ok := stack.BindSource("app", "/app")
	assert.False(t, ok)
}

// TestStack_HostPorts verifies host-port extraction per service,
// including the ip:host:container form and dynamic-only declarations.
func TestStack_HostPorts(t *testing.T) {
	stack, err := Load(writeCompose(t, sampleCompose))
	require.NoError(t, err)

	assert.Equal(t, []int{8000}, stack.HostPorts("app"))
	assert.Equal(t, []int{3306}, stack.HostPorts("db"))
	assert.Empty(t, stack.HostPorts("worker"), "container-only ports have no host side")
	assert.Empty(t, stack.HostPorts("missing"))
}

// TestStack_AllHostPorts verifies the sorted, deduplicated union used
// by the port preflight.
func TestStack_AllHostPorts(t *testing.T) {
	stack, err := Load(writeCompose(t, `services:
  a:
    ports: ["8000:8000", "3306:3306"]
  b:
    ports: ["8000:80"]
`))
	require.NoError(t, err)

	assert.Equal(t, []int{3306, 8000}, stack.AllHostPorts())
}

// TestParseHostPort exercises every supported short-syntax form.
func TestParseHostPort(t *testing.T) {
	tests := []struct {
		decl     string
		expected int
		ok       bool
	}{
		{"8000:8000", 8000, true},
		{"127.0.0.1:3306:3306", 3306, true},
		{"53:53/udp", 53, true},
		{" 8080:80 ", 8080, true},
		{"9000", 0, false},
		{"0:80", 0, false},
		{"70000:80", 0, false},
		{"abc:80", 0, false},
		{"a:b:c:d", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			port, ok := parseHostPort(tt.decl)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, port)
		})
	}
}
