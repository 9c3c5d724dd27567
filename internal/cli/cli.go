// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/mdwalk/internal/classifier"
	"github.com/temirov/mdwalk/internal/config"
	"github.com/temirov/mdwalk/internal/decoder"
	"github.com/temirov/mdwalk/internal/discover"
	"github.com/temirov/mdwalk/internal/output"
	"github.com/temirov/mdwalk/internal/services/clipboard"
	"github.com/temirov/mdwalk/internal/services/stream"
	"github.com/temirov/mdwalk/internal/tokenizer"
	"github.com/temirov/mdwalk/internal/types"
	"github.com/temirov/mdwalk/internal/utils"
)

const (
	versionTemplate      = "mdwalk version: %s\n"
	defaultPath          = "."
	rootUse              = "mdwalk [directory]"
	rootShortDescription = "render a directory as a markdown report"
	rootLongDescription  = `mdwalk walks a directory and writes a markdown report.
Without a subcommand it behaves like "combine": every readable text file is
embedded in one document with a table of contents. Use "tree" for a directory
diagram only.`
	combineUse              = "combine [directory]"
	treeUse                 = "tree [directory]"
	initUse                 = "init"
	combineAlias            = "c"
	treeAlias               = "t"
	combineShortDescription = "combine file contents into one markdown file (" + combineAlias + ")"
	treeShortDescription    = "write a markdown directory tree (" + treeAlias + ")"
	initShortDescription    = "write a default configuration file"

	// combineUsageExample demonstrates combine command usage.
	combineUsageExample = `  # Combine the current directory, skipping log files
  mdwalk combine --exclude log .

  # Limit file size and count tokens
  mdwalk c --max-size 100000 --tokens ./src`

	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Write the tree with file sizes
  mdwalk tree --sizes -o tree.md ./project`

	verboseFlagName     = "verbose"
	outputFlagName      = "output"
	hiddenFlagName      = "hidden"
	sizesFlagName       = "sizes"
	configFlagName      = "config"
	ignoreFlagName      = "ignore"
	noGitignoreFlagName = "no-gitignore"
	copyFlagName        = "copy"
	versionFlagName     = "version"
	excludeFlagName     = "exclude"
	maxSizeFlagName     = "max-size"
	noTOCFlagName       = "no-toc"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	globalFlagName      = "global"
	forceFlagName       = "force"

	verboseFlagDescription     = "enable debug logging"
	outputFlagDescription      = "output file (default combined_output.md or file_tree.md)"
	hiddenFlagDescription      = "include hidden files and directories"
	sizesFlagDescription       = "show file sizes in the tree"
	configFlagDescription      = "configuration file (default ./.mdwalk.yaml)"
	ignoreFlagDescription      = "skip paths matching a glob pattern (repeatable)"
	noGitignoreFlagDescription = "do not apply the root .gitignore"
	copyFlagDescription        = "copy the report to the clipboard"
	versionFlagDescription     = "display application version"
	excludeFlagDescription     = "additional file extensions to skip, such as log or tar.gz (repeatable, comma separated)"
	maxSizeFlagDescription     = "skip files larger than this many bytes (0 disables the limit)"
	noTOCFlagDescription       = "omit the table of contents"
	tokensFlagDescription      = "count tokens of included files"
	modelFlagDescription       = "tokenizer model used with --tokens"
	globalFlagDescription      = "write the global configuration under the home directory"
	forceFlagDescription       = "overwrite an existing configuration file"

	defaultTokenizerModelName = "gpt-4o"
	errorNegativeMaxSize      = "--max-size must not be negative, got %d"
)

// Environment carries the process level collaborators of the CLI.
type Environment struct {
	Logger           *zap.Logger
	LogLevel         zap.AtomicLevel
	Stdout           io.Writer
	WorkingDirectory string
	HomeDirectory    string
	Now              func() time.Time
	Clipboard        clipboard.Copier
	NewTokenCounter  func(tokenizer.Config) (tokenizer.Counter, string, error)
}

func (environment Environment) withDefaults() Environment {
	if environment.Logger == nil {
		environment.Logger = zap.NewNop()
	}
	if environment.LogLevel == (zap.AtomicLevel{}) {
		environment.LogLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if environment.Stdout == nil {
		environment.Stdout = os.Stdout
	}
	if environment.Now == nil {
		environment.Now = time.Now
	}
	if environment.Clipboard == nil {
		environment.Clipboard = clipboard.NewService()
	}
	if environment.NewTokenCounter == nil {
		environment.NewTokenCounter = tokenizer.NewCounter
	}
	return environment
}

// Execute runs the mdwalk application with the process arguments.
func Execute(environment Environment) error {
	return NewRootCommand(environment).Execute()
}

// globalOptions stores the values of persistent flags.
type globalOptions struct {
	verbose          bool
	outputFile       string
	includeHidden    bool
	showSizes        bool
	configFile       string
	ignorePatterns   []string
	disableGitignore bool
	copyToClipboard  bool
	showVersion      bool
}

// combineOptions stores the values of combine-only flags.
type combineOptions struct {
	excludedExtensions []string
	maxFileSize        int64
	disableTOC         bool
	countTokens        bool
	tokenModel         string
}

type application struct {
	environment   Environment
	global        globalOptions
	configuration config.ApplicationConfiguration
}

// NewRootCommand builds the root Cobra command. The root command runs combine.
func NewRootCommand(environment Environment) *cobra.Command {
	app := &application{environment: environment.withDefaults()}
	var rootCombine combineOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       combineUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runCombine(command, arguments, rootCombine)
		},
	}

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.BoolVarP(&app.global.verbose, verboseFlagName, "v", false, verboseFlagDescription)
	persistentFlags.StringVarP(&app.global.outputFile, outputFlagName, "o", "", outputFlagDescription)
	persistentFlags.BoolVar(&app.global.includeHidden, hiddenFlagName, false, hiddenFlagDescription)
	persistentFlags.BoolVar(&app.global.showSizes, sizesFlagName, false, sizesFlagDescription)
	persistentFlags.StringVar(&app.global.configFile, configFlagName, "", configFlagDescription)
	persistentFlags.StringArrayVar(&app.global.ignorePatterns, ignoreFlagName, nil, ignoreFlagDescription)
	persistentFlags.BoolVar(&app.global.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	persistentFlags.BoolVar(&app.global.copyToClipboard, copyFlagName, false, copyFlagDescription)
	persistentFlags.BoolVar(&app.global.showVersion, versionFlagName, false, versionFlagDescription)
	addCombineFlags(rootCommand, &rootCombine)

	rootCommand.AddCommand(
		app.createCombineCommand(),
		app.createTreeCommand(),
		app.createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// addCombineFlags registers combine-only flags on the command.
func addCombineFlags(command *cobra.Command, options *combineOptions) {
	command.Flags().StringArrayVar(&options.excludedExtensions, excludeFlagName, nil, excludeFlagDescription)
	command.Flags().Int64Var(&options.maxFileSize, maxSizeFlagName, 0, maxSizeFlagDescription)
	command.Flags().BoolVar(&options.disableTOC, noTOCFlagName, false, noTOCFlagDescription)
	command.Flags().BoolVar(&options.countTokens, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&options.tokenModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
}

// createCombineCommand returns the combine subcommand.
func (app *application) createCombineCommand() *cobra.Command {
	var options combineOptions
	combineCommand := &cobra.Command{
		Use:     combineUse,
		Aliases: []string{combineAlias},
		Short:   combineShortDescription,
		Example: combineUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runCombine(command, arguments, options)
		},
	}
	addCombineFlags(combineCommand, &options)
	return combineCommand
}

// createTreeCommand returns the tree subcommand.
func (app *application) createTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runTree(command, arguments)
		},
	}
}

// createInitCommand returns the init subcommand.
func (app *application) createInitCommand() *cobra.Command {
	var writeGlobal bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if app.global.showVersion {
				return app.printVersion()
			}
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.environment.WorkingDirectory,
				HomeDirectory:    app.environment.HomeDirectory,
			})
			if err != nil {
				return err
			}
			app.environment.Logger.Info("configuration written", zap.String("path", path))
			return nil
		},
	}
	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// prepare loads configuration files and applies the log level before any command runs.
func (app *application) prepare(command *cobra.Command) error {
	if app.global.showVersion || command.Name() == initUse {
		app.applyLogLevel(command)
		return nil
	}
	loaded, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.environment.WorkingDirectory,
		HomeDirectory:    app.environment.HomeDirectory,
		ExplicitFilePath: app.global.configFile,
	})
	if err != nil {
		return err
	}
	app.configuration = loaded
	app.applyLogLevel(command)
	return nil
}

func (app *application) applyLogLevel(command *cobra.Command) {
	verbose := resolveBool(command, verboseFlagName, app.global.verbose, app.configuration.Verbose, false)
	if verbose {
		app.environment.LogLevel.SetLevel(zapcore.DebugLevel)
	}
}

func (app *application) printVersion() error {
	_, err := fmt.Fprintf(app.environment.Stdout, versionTemplate, utils.GetApplicationVersion())
	return err
}

func (app *application) runCombine(command *cobra.Command, arguments []string, options combineOptions) error {
	if app.global.showVersion {
		return app.printVersion()
	}
	configuration, err := app.buildConfiguration(command, arguments, types.CommandCombine, options)
	if err != nil {
		return err
	}
	return app.run(configuration)
}

func (app *application) runTree(command *cobra.Command, arguments []string) error {
	if app.global.showVersion {
		return app.printVersion()
	}
	configuration, err := app.buildConfiguration(command, arguments, types.CommandTree, combineOptions{})
	if err != nil {
		return err
	}
	return app.run(configuration)
}

// run produces the report described by configuration and writes it to its output file.
func (app *application) run(configuration types.Configuration) error {
	logger := app.environment.Logger
	root, err := resolveRoot(configuration.SourceDirectory)
	if err != nil {
		return err
	}

	ignoreMatcher, err := config.LoadIgnoreMatcher(root.AbsolutePath, configuration.UseGitignore)
	if err != nil {
		return err
	}
	pathClassifier, err := classifier.New(classifier.NewExclusionRules(configuration.ExtraExcludedExtensions), classifier.Options{
		IncludeHidden:  configuration.IncludeHidden,
		MaxFileSize:    configuration.MaxFileSize,
		IgnorePatterns: configuration.IgnorePatterns,
		IgnoreMatcher:  ignoreMatcher,
	})
	if err != nil {
		return err
	}

	modulePath, moduleErr := discover.ModulePath(root.AbsolutePath)
	if moduleErr != nil {
		logger.Warn("unable to read module path", zap.Error(moduleErr))
	}
	header := output.ReportHeader{
		GeneratedAt:     utils.FormatTimestamp(app.environment.Now()),
		SourceDirectory: root.AbsolutePath,
		ModulePath:      modulePath,
	}
	skipPaths := []string{configuration.OutputFile}

	var document bytes.Buffer
	var renderer output.StreamRenderer
	var producer func(context.Context, chan<- stream.Event) error

	switch configuration.Command {
	case types.CommandTree:
		renderer = output.NewMarkdownTreeRenderer(&document, header, configuration.ShowSizes)
		producer = func(streamCtx context.Context, ch chan<- stream.Event) error {
			return stream.StreamTree(streamCtx, stream.TreeOptions{
				Root:       root.AbsolutePath,
				Classifier: pathClassifier,
				SkipPaths:  skipPaths,
				Logger:     logger,
			}, ch)
		}
	default:
		var tokenCounter tokenizer.Counter
		tokenModel := ""
		if configuration.CountTokens {
			counter, model, counterErr := app.environment.NewTokenCounter(tokenizer.Config{Model: configuration.TokenModel})
			if counterErr != nil {
				return fmt.Errorf("initialize tokenizer: %w", counterErr)
			}
			tokenCounter = counter
			tokenModel = model
		}
		renderer = output.NewMarkdownCombineRenderer(&document, header, output.CombineRenderOptions{
			GenerateTOC: configuration.GenerateTOC,
			ShowSizes:   configuration.ShowSizes,
		})
		producer = func(streamCtx context.Context, ch chan<- stream.Event) error {
			return stream.StreamCombine(streamCtx, stream.CombineOptions{
				Root:         root.AbsolutePath,
				Classifier:   pathClassifier,
				SkipPaths:    skipPaths,
				Decoder:      decoder.New(),
				TokenCounter: tokenCounter,
				TokenModel:   tokenModel,
				Logger:       logger,
			}, ch)
		}
	}

	var summary stream.SummaryEvent
	consumer := func(event stream.Event) error {
		if event.Kind == stream.EventKindSummary && event.Summary != nil {
			summary = *event.Summary
		}
		return renderer.Handle(event)
	}
	if err := dispatchStream(context.Background(), producer, consumer); err != nil {
		return err
	}
	if err := renderer.Flush(); err != nil {
		return err
	}

	if err := writeReport(configuration.OutputFile, document.Bytes()); err != nil {
		return err
	}
	logger.Info("report written",
		zap.String("command", configuration.Command),
		zap.String("output", configuration.OutputFile),
		zap.Int("files", summary.IncludedFiles),
		zap.Int("unreadable", summary.UnreadableFiles),
	)

	if configuration.CopyToClipboard {
		if copyErr := app.environment.Clipboard.Copy(document.String()); copyErr != nil {
			logger.Warn("unable to copy report to clipboard", zap.Error(copyErr))
		}
	}
	return nil
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolveRoot converts the source directory to absolute form and checks that it is a directory.
func resolveRoot(sourceDirectory string) (types.ValidatedPath, error) {
	absolutePath, absErr := filepath.Abs(sourceDirectory)
	if absErr != nil {
		return types.ValidatedPath{}, types.NewPathError(types.KindInvalidRoot, sourceDirectory, absErr)
	}
	cleanPath := filepath.Clean(absolutePath)
	info, statErr := os.Stat(cleanPath)
	if statErr != nil {
		return types.ValidatedPath{}, types.NewPathError(types.KindInvalidRoot, sourceDirectory, statErr)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, types.NewPathError(types.KindInvalidRoot, sourceDirectory, errors.New("not a directory"))
	}
	return types.ValidatedPath{AbsolutePath: cleanPath, DisplayPath: sourceDirectory}, nil
}

func writeReport(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return types.NewPathError(types.KindWriteFailure, path, err)
	}
	return nil
}
