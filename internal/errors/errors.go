package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// CommandError represents a subprocess execution error
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// AzCLIError enhances az CLI errors with context
func AzCLIError(operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("Azure CLI error during %s", operation),
		Details:    err.Error(),
		Suggestion: getAzCLISuggestion(err),
		Err:        err,
	}
}

// getAzCLISuggestion returns helpful suggestions based on az CLI error output
func getAzCLISuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "az login") || strings.Contains(errStr, "please run 'az login'") {
		return "Run 'az login' to authenticate with Azure"
	}
	if strings.Contains(errStr, "token has expired") || strings.Contains(errStr, "refresh token") {
		return "Your Azure session has expired. Run 'az login' again"
	}
	if strings.Contains(errStr, "secretnotfound") || strings.Contains(errStr, "was not found") {
		return "Verify the secret name and version exist in the Key Vault. Secret names are case-sensitive"
	}
	if strings.Contains(errStr, "forbidden") || strings.Contains(errStr, "does not have secrets get permission") {
		return "Check Key Vault access policies: 'Get' permission is required for secrets"
	}
	if strings.Contains(errStr, "command not found") || strings.Contains(errStr, "executable file not found") {
		return "Install the Azure CLI: https://learn.microsoft.com/cli/azure/install-azure-cli"
	}

	// Generic suggestions
	if strings.Contains(errStr, "timeout") {
		return "The operation timed out. Check your network connection and try again"
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Unable to connect. Check your network and the vault name"
	}

	return ""
}

// WrapCommandNotFound wraps command not found errors with helpful suggestions
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"az":             "Install the Azure CLI: https://learn.microsoft.com/cli/azure/install-azure-cli",
		"ansible":        "Install Ansible with 'pip install ansible'",
		"ansible-galaxy": "Install Ansible with 'pip install ansible' (ansible-galaxy ships with it)",
		"git":            "Install Git from https://git-scm.com/",
		"python3":        "Install Python from https://python.org/",
		"pip":            "Install pip with your Python installation",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return CommandError{
		Command:    command,
		Message:    "command not found",
		Suggestion: suggestion,
	}
}

// IsRetryable reports whether an error looks transient. The updater never
// retries on its own; callers use this to tell the operator a re-run may
// succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	retryablePatterns := []string{
		"timeout",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"rate limit",
		"throttling",
		"too many requests",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}

	return false
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}
	if _, ok := err.(CommandError); ok {
		return err
	}

	// Simplify common technical errors
	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	// Return original error if we can't simplify it
	return err
}
