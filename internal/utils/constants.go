package utils

// Configuration and ignore file names used across the project.
const (
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".mdwalk"
	// GlobalConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = ".mdwalk.yaml"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// IgnoreFileName is the tool-specific ignore file.
	IgnoreFileName = ".mdwalkignore"
	// GoModFileName is the Go module definition file.
	GoModFileName = "go.mod"
)

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal execution errors.
const ApplicationExecutionFailedMessage = "mdwalk failed"
