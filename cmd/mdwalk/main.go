package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/mdwalk/internal/cli"
	"github.com/temirov/mdwalk/internal/utils"
)

// main is the entry point for the mdwalk command.
func main() {
	logLevel := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(logLevel)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer func() { _ = loggerInstance.Sync() }()
	if applicationExecutionError := cli.Execute(cli.Environment{Logger: loggerInstance, LogLevel: logLevel}); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage, zap.Error(applicationExecutionError))
	}
}
