// Package config loads syncconfig.yml: the registry of credential-store
// replicas and the named sync jobs that reference them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jrabinow/kpsync/internal/common"
	"github.com/jrabinow/kpsync/internal/filex"
)

// Database is one replica registry entry. Immutable after load.
type Database struct {
	Name    string
	File    string
	KeyFile string
}

// Job names the replicas that participate and the entries to reconcile,
// both in declaration order. Immutable after load.
type Job struct {
	Name      string
	Databases []string
	Entries   []string
}

type Config struct {
	Databases map[string]Database
	Jobs      map[string]Job
}

type yamlDatabase struct {
	DBFile  string `yaml:"dbfile"`
	KeyFile string `yaml:"keyfile"`
}

type yamlJob struct {
	DB      []string `yaml:"db"`
	Entries []string `yaml:"entries"`
}

type yamlConfig struct {
	DB  map[string]yamlDatabase `yaml:"db"`
	Job map[string]yamlJob      `yaml:"job"`
}

// Load reads the configuration from explicitPath when given, otherwise
// from ./syncconfig.yml, otherwise from the user config home. All failure
// modes wrap ErrConfig.
func Load(explicitPath string) (*Config, error) {
	path, err := resolvePath(explicitPath)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrConfig, path, err)
	}

	var doc yamlConfig
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", common.ErrConfig, path, err)
	}

	cfg := &Config{
		Databases: make(map[string]Database, len(doc.DB)),
		Jobs:      make(map[string]Job, len(doc.Job)),
	}

	for name, db := range doc.DB {
		if db.DBFile == "" {
			return nil, fmt.Errorf("%w: db %q has no dbfile", common.ErrConfig, name)
		}
		cfg.Databases[name] = Database{
			Name:    name,
			File:    filex.ExpandPath(db.DBFile),
			KeyFile: filex.ExpandPath(db.KeyFile),
		}
	}

	for name, job := range doc.Job {
		if len(job.DB) == 0 {
			return nil, fmt.Errorf("%w: job %q references no databases", common.ErrConfig, name)
		}
		if len(job.Entries) == 0 {
			return nil, fmt.Errorf("%w: job %q has no entries", common.ErrConfig, name)
		}
		for _, dbName := range job.DB {
			if _, ok := cfg.Databases[dbName]; !ok {
				return nil, fmt.Errorf("%w: job %q references unknown db %q", common.ErrConfig, name, dbName)
			}
		}
		cfg.Jobs[name] = Job{Name: name, Databases: job.DB, Entries: job.Entries}
	}

	return cfg, nil
}

func resolvePath(explicitPath string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}
	if _, err := os.Stat(common.ConfigFileName); err == nil {
		return common.ConfigFileName, nil
	}
	home, err := filex.ConfigHome()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrConfig, err)
	}
	fallback := filepath.Join(home, common.ConfigDirName, common.ConfigFileName)
	if _, err := os.Stat(fallback); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: no %s found in working directory or %s", common.ErrConfig, common.ConfigFileName, fallback)
		}
		return "", fmt.Errorf("%w: %v", common.ErrConfig, err)
	}
	return fallback, nil
}

// DatabaseNames returns the configured replica names, sorted.
func (c *Config) DatabaseNames() []string {
	names := make([]string, 0, len(c.Databases))
	for name := range c.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// JobNames returns the configured job names, sorted.
func (c *Config) JobNames() []string {
	names := make([]string, 0, len(c.Jobs))
	for name := range c.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveDatabase maps a --db argument to a Database: a configured name
// when one matches, otherwise the path[:keyfile] shorthand.
func (c *Config) ResolveDatabase(arg string) Database {
	if db, ok := c.Databases[arg]; ok {
		return db
	}
	return ParseDatabaseArg(arg)
}

// ParseDatabaseArg parses the "path[:keyfile]" command-line shorthand.
func ParseDatabaseArg(arg string) Database {
	file, keyfile, _ := strings.Cut(arg, ":")
	return Database{
		Name:    filepath.Base(file),
		File:    filex.ExpandPath(file),
		KeyFile: filex.ExpandPath(keyfile),
	}
}
