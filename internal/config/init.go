package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/mdwalk/internal/types"
	"github.com/temirov/mdwalk/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultTokenModel = "gpt-4o"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// DefaultConfiguration returns the built-in defaults written by init.
func DefaultConfiguration() ApplicationConfiguration {
	disabled := false
	enabled := true
	var unlimited int64
	return ApplicationConfiguration{
		Verbose:       &disabled,
		IncludeHidden: &disabled,
		ShowSizes:     &disabled,
		UseGitignore:  &enabled,
		Copy:          &disabled,
		Ignore:        []string{},
		Tree:          TreeConfiguration{Output: types.DefaultTreeOutputFile},
		Combine: CombineConfiguration{
			Output:  types.DefaultCombineOutputFile,
			TOC:     &enabled,
			MaxSize: &unlimited,
			Exclude: []string{},
			Tokens:  TokenConfiguration{Enabled: &disabled, Model: defaultTokenModel},
		},
	}
}

// RenderDefaultConfiguration serializes DefaultConfiguration as YAML.
func RenderDefaultConfiguration() ([]byte, error) {
	rendered, err := yaml.Marshal(DefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("render default configuration: %w", err)
	}
	return rendered, nil
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.LocalConfigFileName)
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			detected, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory for configuration: %w", err)
			}
			homeDirectory = detected
		}
		destinationPath = GlobalConfigurationPath(homeDirectory)
		configurationDirectory := filepath.Dir(destinationPath)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	rendered, renderErr := RenderDefaultConfiguration()
	if renderErr != nil {
		return "", renderErr
	}
	if err := os.WriteFile(destinationPath, rendered, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}
