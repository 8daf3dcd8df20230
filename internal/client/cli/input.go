package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errEmptyPassword = errors.New("password must not be empty")

// passwordOrPrompt returns value when it was given on the command line.
// Otherwise it prompts on stderr and reads the password from the terminal
// without echo.
func passwordOrPrompt(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}

	w := cmd.ErrOrStderr()
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)

	if len(pw) == 0 {
		return "", errEmptyPassword
	}
	return string(pw), nil
}
