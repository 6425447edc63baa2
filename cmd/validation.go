package cmd

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/conneroisu/frontnote/internal/scanner"
)

// validateArgument checks a file or glob argument.
func validateArgument(arg string) error {
	if strings.TrimSpace(arg) == "" {
		return fmt.Errorf("empty path")
	}

	if strings.IndexFunc(arg, unicode.IsControl) >= 0 {
		return fmt.Errorf("contains a control character")
	}

	if _, err := scanner.CompileGlob(arg); err != nil {
		return err
	}

	return nil
}

// validateArguments validates a slice of arguments
func validateArguments(args []string) error {
	for _, arg := range args {
		if err := validateArgument(arg); err != nil {
			return fmt.Errorf("invalid argument %q: %w", arg, err)
		}
	}
	return nil
}
