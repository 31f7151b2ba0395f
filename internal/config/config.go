package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alexjbarnes/wordpress-sync/internal/wordpress"
)

// configFileName is looked up in the user's home directory and the
// working directory; the working directory wins so a repo-local file
// can override the global one.
const configFileName = ".wordpress-sync.yaml"

// Env holds the environment-based configuration. Environment values
// take precedence over the config file.
type Env struct {
	// Host is the logical site host to sync with when no --host flag
	// is given.
	Host string `env:"WP_HOST"`

	// APIHost overrides the transport host the REST API is served from.
	APIHost string `env:"WP_API_HOST"`

	// Username is the WordPress account the application password
	// belongs to.
	Username string `env:"WP_USERNAME"`

	// Password is the application-scoped password. A per-host override
	// WP_APP_PASSWORD_<HOST> wins over this default.
	Password string `env:"WP_APP_PASSWORD"`

	// SEOSchema selects the SEO plugin metadata layout: yoast or rankmath.
	SEOSchema string `env:"WP_SEO_SCHEMA" envDefault:"yoast"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// File is the on-disk configuration: a default host plus per-host
// sections.
type File struct {
	DefaultHost string              `yaml:"default_host"`
	Hosts       map[string]HostConf `yaml:"hosts"`
}

// HostConf is one host section of the config file.
type HostConf struct {
	APIHost   string `yaml:"api_host"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	SEOSchema string `yaml:"seo_schema"`
}

// warnInsecureFile checks whether a file holding credentials has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureFile(path string) {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: %s has insecure permissions %04o; recommended 0600", path, mode)
	}
}

// loadFile reads and merges the config files, home directory first so
// a repo-local file can override the global one.
func loadFile() (*File, error) {
	merged := &File{Hosts: map[string]HostConf{}}

	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configFileName))
	}

	paths = append(paths, configFileName)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		warnInsecureFile(path)

		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		if f.DefaultHost != "" {
			merged.DefaultHost = f.DefaultHost
		}

		for host, conf := range f.Hosts {
			merged.Hosts[host] = conf
		}
	}

	return merged, nil
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// passwordFor resolves the application password for a host. The
// per-host environment variable WP_APP_PASSWORD_<HOST> (host
// uppercased, non-alphanumerics replaced with underscores) wins over
// the global default.
func passwordFor(host, fallback string) string {
	key := "WP_APP_PASSWORD_" + strings.ToUpper(nonAlnum.ReplaceAllString(host, "_"))
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// Resolved is a fully resolved endpoint plus the non-endpoint settings
// that ride along with it.
type Resolved struct {
	Endpoint    *wordpress.Endpoint
	SEOSchema   string
	Environment string
}

// Load resolves the endpoint configuration for a host. An empty host
// falls back to WP_HOST and then the config file's default host.
// Environment variables win over config file sections; the password
// additionally honors the per-host override. A plaintext password from
// the config file is accepted with a warning.
func Load(host string) (*Resolved, error) {
	_ = godotenv.Load()

	e := &Env{}
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	file, err := loadFile()
	if err != nil {
		return nil, err
	}

	if host == "" {
		host = e.Host
	}

	if host == "" {
		host = file.DefaultHost
	}

	if host == "" {
		return nil, fmt.Errorf("no host specified and no default host configured")
	}

	conf := file.Hosts[host]

	endpoint := &wordpress.Endpoint{
		Host:     host,
		APIHost:  firstOf(e.APIHost, conf.APIHost, host),
		Username: firstOf(e.Username, conf.Username),
	}

	if endpoint.Username == "" {
		return nil, fmt.Errorf("no username configured for host %s", host)
	}

	endpoint.Password = passwordFor(host, e.Password)
	if endpoint.Password == "" && conf.Password != "" {
		log.Printf("WARNING: taking plaintext app password from configuration file, use WP_APP_PASSWORD instead")

		endpoint.Password = conf.Password
	}

	if endpoint.Password == "" {
		return nil, fmt.Errorf("no application password configured for host %s", host)
	}

	// The schema env var carries a default, so its set state has to be
	// checked directly for the environment to win over a host section.
	seoSchema := e.SEOSchema
	if _, set := os.LookupEnv("WP_SEO_SCHEMA"); !set && conf.SEOSchema != "" {
		seoSchema = conf.SEOSchema
	}

	return &Resolved{
		Endpoint:    endpoint,
		SEOSchema:   seoSchema,
		Environment: e.Environment,
	}, nil
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
