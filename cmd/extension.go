package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
)

// RunExtension attempts to find and execute an external recon-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found or executed.
//
// Global settings are passed to the extension as environment variables.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "recon-" + subcommand

	// Look for the external command in PATH
	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		log.Printf("External command %q not found in PATH: %v", externalCmdName, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns the resolved global settings as environment variables.
// Secrets, like the database connection string, are passed only if set in the environment.
func extensionEnv() []string {
	env := []string{
		EnvLedgerFile + "=" + ledgerPath(),
		EnvInbox + "=" + inboxPath(),
		EnvCurrency + "=" + ledgerCurrency(),
		EnvVerbose + "=" + strconv.FormatBool(*Verbose || os.Getenv(EnvVerbose) == "true"),
	}
	if p := publishPath(); p != "" {
		env = append(env, EnvPublishDir+"="+p)
	}
	if m := setting(mappingFile, EnvMappingFile, ""); m != "" {
		env = append(env, EnvMappingFile+"="+m)
	}
	return env
}
