// Package config loads mdwalk defaults from YAML configuration files and the
// ignore files found in the source directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/mdwalk/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides the user home directory used for the global file.
	HomeDirectory string
}

// ApplicationConfiguration holds defaults that command-line flags override.
// Nil pointers mean "not configured".
type ApplicationConfiguration struct {
	Verbose       *bool                `mapstructure:"verbose" yaml:"verbose"`
	IncludeHidden *bool                `mapstructure:"hidden" yaml:"hidden"`
	ShowSizes     *bool                `mapstructure:"sizes" yaml:"sizes"`
	UseGitignore  *bool                `mapstructure:"use_gitignore" yaml:"use_gitignore"`
	Copy          *bool                `mapstructure:"copy" yaml:"copy"`
	Ignore        []string             `mapstructure:"ignore" yaml:"ignore"`
	Tree          TreeConfiguration    `mapstructure:"tree" yaml:"tree"`
	Combine       CombineConfiguration `mapstructure:"combine" yaml:"combine"`
}

// TreeConfiguration defines defaults for the tree command.
type TreeConfiguration struct {
	Output string `mapstructure:"output" yaml:"output"`
}

// CombineConfiguration defines defaults for the combine command.
type CombineConfiguration struct {
	Output  string             `mapstructure:"output" yaml:"output"`
	TOC     *bool              `mapstructure:"toc" yaml:"toc"`
	MaxSize *int64             `mapstructure:"max_size" yaml:"max_size"`
	Exclude []string           `mapstructure:"exclude" yaml:"exclude"`
	Tokens  TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled"`
	Model   string `mapstructure:"model" yaml:"model"`
}

// GlobalConfigurationPath returns the global configuration file under homeDirectory.
func GlobalConfigurationPath(homeDirectory string) string {
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Local values override global ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if detected, err := os.UserHomeDir(); err == nil {
			homeDirectory = detected
		}
	}
	if homeDirectory != "" {
		globalConfig, loadErr := loadConfigurationFromPath(GlobalConfigurationPath(homeDirectory), false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Ignore = utils.DeduplicatePatterns(merged.Ignore)
	merged.Combine.Exclude = utils.DeduplicatePatterns(utils.SplitListValues(merged.Combine.Exclude))

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		absolute, err := filepath.Abs(filepath.Join(workingDirectory, explicitPath))
		if err != nil {
			return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

// loadConfigurationFromPath reads one YAML file. A missing file is an empty
// configuration unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Verbose = mergeBool(result.Verbose, override.Verbose)
	result.IncludeHidden = mergeBool(result.IncludeHidden, override.IncludeHidden)
	result.ShowSizes = mergeBool(result.ShowSizes, override.ShowSizes)
	result.UseGitignore = mergeBool(result.UseGitignore, override.UseGitignore)
	result.Copy = mergeBool(result.Copy, override.Copy)
	if len(override.Ignore) > 0 {
		result.Ignore = append([]string{}, override.Ignore...)
	}
	if override.Tree.Output != "" {
		result.Tree.Output = override.Tree.Output
	}
	result.Combine = result.Combine.merge(override.Combine)
	return result
}

func (config CombineConfiguration) merge(override CombineConfiguration) CombineConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	result.TOC = mergeBool(result.TOC, override.TOC)
	if override.MaxSize != nil {
		maxSize := *override.MaxSize
		result.MaxSize = &maxSize
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	result.Tokens.Enabled = mergeBool(result.Tokens.Enabled, override.Tokens.Enabled)
	if override.Tokens.Model != "" {
		result.Tokens.Model = override.Tokens.Model
	}
	return result
}

func mergeBool(current *bool, override *bool) *bool {
	if override == nil {
		return current
	}
	cloned := *override
	return &cloned
}

// BoolValue dereferences value, falling back to defaultValue when unset.
func BoolValue(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}
