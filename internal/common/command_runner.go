package common

import (
	"context"
	"fmt"

	"github.com/StealthPanther/ai-career-navigator/internal/errors"
	"github.com/StealthPanther/ai-career-navigator/internal/pipeline"
)

// CreateInputFunc builds the task input from the contents of the command's file arguments
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of a task
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// TaskFunc runs one generation task through the pipeline
type TaskFunc[Input, Output any] func(context.Context, Input) (pipeline.Result[Output], error)

// RunTaskCommand reads the file arguments, runs the task and writes the formatted result.
// A fallback answer is reported as a warning, not a failure.
func RunTaskCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	task TaskFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(cmdConfig.MaxFileSize, logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := task(ctx, input)
	if err != nil {
		return err
	}
	ReportResult(logger, result)

	return outputHandler.HandleOutput(result.Value, cmdConfig)
}

// ReportResult logs which tier answered and the token usage, if any
func ReportResult[T any](logger *errors.Logger, result pipeline.Result[T]) {
	if result.Degraded() {
		logger.Warn("AI providers unavailable, showing the built-in fallback answer",
			"attempts", len(result.Attempts))
	} else {
		logger.Info("Task answered", "tier", result.Tier, "attempts", len(result.Attempts))
	}
	if usage := result.Usage; usage != nil {
		logger.Info("AI token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}
}
