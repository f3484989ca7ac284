// Package config loads the analyzer's runtime settings from flags,
// environment variables, and an optional YAML defaults file.
package config

import (
	"fmt"
	"os"

	"github.com/namsral/flag"
	"gopkg.in/yaml.v3"

	"bridgecard/engine"
)

// Config holds everything cmd/analyze needs to construct and run an Engine.
type Config struct {
	OracleCommand string
	OraclePath    string
	LogLevel      string

	Engine engine.Config

	// Args holds the positional arguments left over after Load parses flags.
	Args []string
}

// Defaults mirrors what the teacher's config.Load bakes into its flag
// defaults: every field gets a usable value with no flags or env vars set.
func Defaults() Config {
	return Config{
		OracleCommand: "table",
		OraclePath:    "",
		LogLevel:      "info",
		Engine: engine.Config{
			Threads:      1,
			IterationCap: 0,
			Depth:        1,
		},
	}
}

// Load parses flags and environment variables (via namsral/flag, so every
// flag below is also settable as an upper-cased env var) into c, overriding
// whatever was already set by LoadYAML.
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("bridgecard", flag.ContinueOnError)
	fs.StringVar(&c.OracleCommand, "oracle-command", c.OracleCommand, "double-dummy oracle backend: table (the only bundled backend)")
	fs.StringVar(&c.OraclePath, "oracle-path", c.OraclePath, "path to an external oracle executable (not used by the table backend)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "zerolog level: debug, info, warn, error")
	fs.IntVar(&c.Engine.Threads, "threads", c.Engine.Threads, "number of simulation-loop workers")
	fs.IntVar(&c.Engine.IterationCap, "iteration-cap", c.Engine.IterationCap, "stop a search after this many iterations (0 = unlimited)")
	fs.IntVar(&c.Engine.Depth, "depth", c.Engine.Depth, "simulation recursion depth, 1-3")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.Args = fs.Args()
	return nil
}

// LoadYAML reads a defaults file (e.g. bridgecard.yaml) and merges it into
// c, following the teacher's disk-backed-defaults pattern but for the
// engine's tunables rather than a lexicon/strategy path.
func (c *Config) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading yaml defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing yaml defaults: %w", err)
	}
	return nil
}
