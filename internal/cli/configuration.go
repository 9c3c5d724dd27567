package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/temirov/mdwalk/internal/config"
	"github.com/temirov/mdwalk/internal/types"
	"github.com/temirov/mdwalk/internal/utils"
)

// buildConfiguration assembles the run configuration. Explicit flags win over
// configuration files, which win over built-in defaults.
func (app *application) buildConfiguration(command *cobra.Command, arguments []string, commandName string, options combineOptions) (types.Configuration, error) {
	fileConfiguration := app.configuration
	sourceDirectory := defaultPath
	if len(arguments) > 0 {
		sourceDirectory = arguments[0]
	}

	configuration := types.Configuration{
		Command:         commandName,
		SourceDirectory: app.resolvePath(sourceDirectory),
		IncludeHidden:   resolveBool(command, hiddenFlagName, app.global.includeHidden, fileConfiguration.IncludeHidden, false),
		ShowSizes:       resolveBool(command, sizesFlagName, app.global.showSizes, fileConfiguration.ShowSizes, false),
		UseGitignore:    !resolveBool(command, noGitignoreFlagName, app.global.disableGitignore, negate(fileConfiguration.UseGitignore), false),
		CopyToClipboard: resolveBool(command, copyFlagName, app.global.copyToClipboard, fileConfiguration.Copy, false),
		Verbose:         resolveBool(command, verboseFlagName, app.global.verbose, fileConfiguration.Verbose, false),
		IgnorePatterns:  resolveList(command, ignoreFlagName, app.global.ignorePatterns, fileConfiguration.Ignore),
	}

	outputFile := types.DefaultTreeOutputFile
	configuredOutput := fileConfiguration.Tree.Output
	if commandName == types.CommandCombine {
		outputFile = types.DefaultCombineOutputFile
		configuredOutput = fileConfiguration.Combine.Output
	}
	if command.Flags().Changed(outputFlagName) {
		outputFile = app.global.outputFile
	} else if configuredOutput != "" {
		outputFile = configuredOutput
	}
	configuration.OutputFile = app.resolvePath(outputFile)

	if commandName != types.CommandCombine {
		return configuration, nil
	}

	combineConfiguration := fileConfiguration.Combine
	configuration.GenerateTOC = !resolveBool(command, noTOCFlagName, options.disableTOC, negate(combineConfiguration.TOC), false)
	configuration.CountTokens = resolveBool(command, tokensFlagName, options.countTokens, combineConfiguration.Tokens.Enabled, false)
	configuration.TokenModel = options.tokenModel
	if !command.Flags().Changed(modelFlagName) && combineConfiguration.Tokens.Model != "" {
		configuration.TokenModel = combineConfiguration.Tokens.Model
	}
	configuration.MaxFileSize = options.maxFileSize
	if !command.Flags().Changed(maxSizeFlagName) && combineConfiguration.MaxSize != nil {
		configuration.MaxFileSize = *combineConfiguration.MaxSize
	}
	if configuration.MaxFileSize < 0 {
		return types.Configuration{}, fmt.Errorf(errorNegativeMaxSize, configuration.MaxFileSize)
	}
	excluded := utils.SplitListValues(options.excludedExtensions)
	configuration.ExtraExcludedExtensions = resolveList(command, excludeFlagName, excluded, combineConfiguration.Exclude)

	return configuration, nil
}

func (app *application) resolvePath(path string) string {
	if filepath.IsAbs(path) || app.environment.WorkingDirectory == "" {
		return path
	}
	return filepath.Join(app.environment.WorkingDirectory, path)
}

func resolveBool(command *cobra.Command, flagName string, flagValue bool, configured *bool, defaultValue bool) bool {
	if command != nil && command.Flags().Changed(flagName) {
		return flagValue
	}
	return config.BoolValue(configured, defaultValue)
}

func resolveList(command *cobra.Command, flagName string, flagValues []string, configured []string) []string {
	if command != nil && command.Flags().Changed(flagName) {
		return utils.DeduplicatePatterns(flagValues)
	}
	return utils.DeduplicatePatterns(configured)
}

func negate(value *bool) *bool {
	if value == nil {
		return nil
	}
	negated := !*value
	return &negated
}
