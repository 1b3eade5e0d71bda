package conf

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPath      = "/etc/sysconfig-inspector/config.toml"
	DefaultDropInDir = "/etc/sysconfig-inspector/config.toml.d/"
)

func init() {
	Configuration, LoadErr = load(&ConfigSource{
		Path:      DefaultPath,
		DropInDir: DefaultDropInDir,
	})
}

// load reads sources. When that fails it returns the embedded defaults
// together with the error.
func load(sources *ConfigSource) (Config, error) {
	config, err := sources.Read()
	if err != nil {
		dto, parseErr := parseConfigDTO(defaultConfig)
		if parseErr != nil {
			panic(fmt.Sprintf("failed to parse embedded defaults: %v", parseErr))
		}
		config = Config{}
		config.Update(dto)
	}
	return config, err
}

// defaultConfig contains the embedded default configuration file.
// It is the base layer applied before the main file and drop-in files.
//
//go:embed default.toml
var defaultConfig string

// Configuration is the global immutable state.
var Configuration Config

// LoadErr holds the error from reading the default configuration sources at
// init. Configuration falls back to the embedded defaults when it is set.
var LoadErr error

// Config represents the immutable public configuration object.
type Config struct {
	LogLevel slog.Level
	// Format is the default report format: text, json or yaml.
	Format string

	SSHDConfig string
	LimitsConf string
	// LimitsD is a glob pattern.
	LimitsD    string
	SysctlConf string
	SysctlD    string
}

// Update applies non-nil values from a configDTO.
func (c *Config) Update(dto configDTO) {
	if dto.LogLevel != nil {
		switch strings.ToUpper(*dto.LogLevel) {
		case "DEBUG":
			c.LogLevel = slog.LevelDebug
		case "INFO":
			c.LogLevel = slog.LevelInfo
		case "WARN":
			c.LogLevel = slog.LevelWarn
		case "ERROR":
			c.LogLevel = slog.LevelError
		}
	}
	if dto.Format != nil {
		c.Format = *dto.Format
	}
	if dto.SSHDConfig != nil {
		c.SSHDConfig = *dto.SSHDConfig
	}
	if dto.LimitsConf != nil {
		c.LimitsConf = *dto.LimitsConf
	}
	if dto.LimitsD != nil {
		c.LimitsD = *dto.LimitsD
	}
	if dto.SysctlConf != nil {
		c.SysctlConf = *dto.SysctlConf
	}
	if dto.SysctlD != nil {
		c.SysctlD = *dto.SysctlD
	}
}

// ConfigSource orchestrates loading configuration from multiple sources.
// See the Read method.
type ConfigSource struct {
	Path      string
	DropInDir string
}

// NewConfigSource returns a source reading path and the drop-in directory
// next to it, named after path with a ".d" suffix.
func NewConfigSource(path string) *ConfigSource {
	return &ConfigSource{Path: path, DropInDir: path + ".d"}
}

// Read loads and returns the complete Config by merging all layers:
// 1. Embedded defaults
// 2. Main configuration file
// 3. Drop-in files
func (cs *ConfigSource) Read() (Config, error) {
	resolved := Config{}

	dto, err := parseConfigDTO(defaultConfig)
	if err != nil {
		slog.Error("failed to parse embedded defaults", "error", err)
		return resolved, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	resolved.Update(dto)

	data, err := os.ReadFile(cs.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return resolved, fmt.Errorf("failed to load %s: %w", cs.Path, err)
		}
	} else {
		mainDTO, err := parseConfigDTO(string(data))
		if err != nil {
			// An existing but malformed file is an error; don't hide it.
			return resolved, fmt.Errorf("failed to parse %s: %w", cs.Path, err)
		}
		resolved.Update(mainDTO)
	}

	dropInDTOs, err := cs.parseDropInFiles()
	if err != nil {
		slog.Error("failed to load drop-in files", "error", err, "dir", cs.DropInDir)
		return resolved, err
	}
	for _, dropInDTO := range dropInDTOs {
		resolved.Update(dropInDTO)
	}

	return resolved, nil
}

type configDTO struct {
	LogLevel   *string `toml:"log-level"`
	Format     *string `toml:"format"`
	SSHDConfig *string `toml:"sshd-config"`
	LimitsConf *string `toml:"limits-conf"`
	LimitsD    *string `toml:"limits-d"`
	SysctlConf *string `toml:"sysctl-conf"`
	SysctlD    *string `toml:"sysctl-d"`
}

// parseConfigDTO parses a TOML string into a configDTO.
func parseConfigDTO(data string) (configDTO, error) {
	var dto configDTO

	if err := toml.Unmarshal([]byte(data), &dto); err != nil {
		return dto, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return dto, nil
}

// findDropInFiles returns the sorted paths of *.toml files in the drop-in
// directory, or nil if the directory doesn't exist.
func (cs *ConfigSource) findDropInFiles() ([]string, error) {
	if _, err := os.Stat(cs.DropInDir); os.IsNotExist(err) {
		return nil, nil
	}

	entries, err := os.ReadDir(cs.DropInDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read drop-in directory %s: %w", cs.DropInDir, err)
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".toml") {
			filenames = append(filenames, filepath.Join(cs.DropInDir, entry.Name()))
		}
	}
	sort.Strings(filenames)

	return filenames, nil
}

func (cs *ConfigSource) parseDropInFiles() ([]configDTO, error) {
	paths, err := cs.findDropInFiles()
	if err != nil {
		return nil, err
	}

	var dtos []configDTO
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		dto, err := parseConfigDTO(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		dtos = append(dtos, dto)
	}

	return dtos, nil
}
