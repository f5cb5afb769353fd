package ai

import "github.com/bonsai-todo/bonsai/internal/domain/command"

// FallbackResponse is a degraded but always-valid answer offering a manual
// command. Constructors are pure: no I/O, no clock, never fail.
type FallbackResponse struct {
	Message      string
	SuggestedCLI string
}

// TimeoutFallback is returned when the provider exceeded its deadline.
func TimeoutFallback() FallbackResponse {
	return FallbackResponse{
		Message: "That's taking too long to process. You can use the manual command instead: " +
			command.HelpCommand + " shows everything available.",
		SuggestedCLI: command.HelpCommand,
	}
}

// UnavailableFallback is returned when the provider failed outright.
func UnavailableFallback() FallbackResponse {
	return FallbackResponse{
		Message: "I can't interpret messages right now. You can still manage tasks with the manual command: try " +
			command.HelpCommand + ".",
		SuggestedCLI: command.HelpCommand,
	}
}

// UnknownFallback is returned when the message could not be mapped to an
// action. clarification, when non-empty, is the interpreter's own question
// and takes precedence over the generic text.
func UnknownFallback(clarification string) FallbackResponse {
	msg := clarification
	if msg == "" {
		msg = "I'm not sure what you'd like to do. You can use the manual command: " +
			command.HelpCommand + " lists what I understand."
	}
	return FallbackResponse{
		Message:      msg,
		SuggestedCLI: command.HelpCommand,
	}
}
