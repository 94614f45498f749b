// Package composefile reads the stack's compose YAML to derive service
// and container names instead of hardcoding them.
//
// The readiness polls and the status command need engine-level container
// names. Compose either uses the declared container_name or synthesizes
// "<project>-<service>-1", so both rules live here. Only the handful of
// fields laraup consumes are modeled; everything else in the YAML is
// ignored and left to compose itself.
package composefile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service is the subset of a compose service definition laraup reads.
type Service struct {
	// ContainerName is the declared container_name, if any.
	ContainerName string `yaml:"container_name"`

	// Image is the image reference, if the service uses one.
	Image string `yaml:"image"`

	// Ports holds the published port declarations in compose short
	// syntax ("8000:8000", "127.0.0.1:3306:3306", "9000").
	Ports []string `yaml:"ports"`

	// Volumes holds the volume declarations in compose short syntax
	// ("../codesrc:/app", "db_data:/var/lib/mysql"). Long-syntax
	// declarations are tolerated but not inspected.
	Volumes []volumeDecl `yaml:"volumes"`
}

// volumeDecl is a short-syntax volume declaration. Long-syntax (mapping)
// declarations decode to the empty string instead of failing the whole
// compose file.
type volumeDecl string

// UnmarshalYAML accepts scalar declarations and ignores everything else.
func (v *volumeDecl) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*v = volumeDecl(node.Value)
	}
	return nil
}

// Stack is a parsed compose file.
type Stack struct {
	Services map[string]Service `yaml:"services"`
}

// Load parses the compose file at path.
func Load(path string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file: %w", err)
	}

	var stack Stack
	if err := yaml.Unmarshal(data, &stack); err != nil {
		return nil, fmt.Errorf("failed to parse compose file %s: %w", path, err)
	}
	if len(stack.Services) == 0 {
		return nil, fmt.Errorf("compose file %s declares no services", path)
	}
	return &stack, nil
}

// ServiceNames returns the declared service names in sorted order.
func (s *Stack) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasService reports whether the stack declares the named service.
func (s *Stack) HasService(name string) bool {
	_, ok := s.Services[name]
	return ok
}

// ContainerName returns the engine-level container name for a service.
//
// The declared container_name wins; otherwise the compose default naming
// scheme "<project>-<service>-1" applies. The "-1" suffix assumes a
// single replica, which holds for this stack (compose scale is out of
// scope for a local development environment).
func (s *Stack) ContainerName(project, service string) string {
	if svc, ok := s.Services[service]; ok && svc.ContainerName != "" {
		return svc.ContainerName
	}
	return fmt.Sprintf("%s-%s-1", project, service)
}

// BindSource returns the host side of the bind mount at containerPath
// in the named service. A trailing access-mode suffix (":ro", ":cached")
// is tolerated. Named volumes are skipped: compose treats a source as a
// path only when it starts with ".", "/", or "~". Returns false when the
// service has no short-syntax bind mount for that container path.
func (s *Stack) BindSource(service, containerPath string) (string, bool) {
	svc, ok := s.Services[service]
	if !ok {
		return "", false
	}
	for _, decl := range svc.Volumes {
		parts := strings.Split(string(decl), ":")
		if len(parts) < 2 || parts[1] != containerPath {
			continue
		}
		src := parts[0]
		if strings.HasPrefix(src, ".") || strings.HasPrefix(src, "/") || strings.HasPrefix(src, "~") {
			return src, true
		}
	}
	return "", false
}

// HostPorts returns the host-side ports a service publishes, parsed from
// the compose short syntax. Declarations without a host port (container
// port only) are skipped — compose assigns those dynamically and there
// is nothing to check or print for them.
func (s *Stack) HostPorts(service string) []int {
	svc, ok := s.Services[service]
	if !ok {
		return nil
	}

	var ports []int
	for _, decl := range svc.Ports {
		if p, ok := parseHostPort(decl); ok {
			ports = append(ports, p)
		}
	}
	return ports
}

// AllHostPorts returns every published host port in the stack, sorted
// and deduplicated.
func (s *Stack) AllHostPorts() []int {
	seen := make(map[int]bool)
	var ports []int
	for name := range s.Services {
		for _, p := range s.HostPorts(name) {
			if !seen[p] {
				seen[p] = true
				ports = append(ports, p)
			}
		}
	}
	sort.Ints(ports)
	return ports
}

// parseHostPort extracts the host port from a compose short-syntax port
// declaration. Supported forms:
//
//	"8000:8000"           → 8000
//	"127.0.0.1:3306:3306" → 3306
//	"9000"                → none (container port only)
//
// A "/udp" or "/tcp" protocol suffix is stripped before parsing.
func parseHostPort(decl string) (int, bool) {
	decl = strings.TrimSpace(decl)
	if i := strings.Index(decl, "/"); i >= 0 {
		decl = decl[:i]
	}

	parts := strings.Split(decl, ":")
	var hostPart string
	switch len(parts) {
	case 1:
		// Container port only — host port assigned dynamically.
		return 0, false
	case 2:
		hostPart = parts[0]
	case 3:
		// "host-ip:host-port:container-port"
		hostPart = parts[1]
	default:
		return 0, false
	}

	port, err := strconv.Atoi(hostPart)
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}
