package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension script is a shell script")
	}
	tempDir := t.TempDir()
	out := filepath.Join(tempDir, "env.txt")

	// recon-hello dumps the settings it receives, and fails with its first argument.
	script := "#!/bin/sh\nenv | grep '^RECON_' | sort > \"$HELLO_OUT\"\nexit \"$1\"\n"
	if err := os.WriteFile(filepath.Join(tempDir, "recon-hello"), []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write recon-hello: %v", err)
	}
	t.Setenv("PATH", tempDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("HELLO_OUT", out)
	t.Setenv(EnvLedgerFile, "")
	t.Setenv(EnvCurrency, "")
	t.Setenv(EnvInbox, "")

	expectedLedgerFile := filepath.Join(tempDir, "random_ledger.xlsx")
	*ledgerFile = expectedLedgerFile
	*currency = "XYZ"
	*Verbose = true
	t.Cleanup(func() { *ledgerFile, *currency, *Verbose = "", "", false })

	found, code := RunExtension("hello", []string{"3"})
	if !found {
		t.Fatal("RunExtension() did not find recon-hello")
	}
	if code != 3 {
		t.Errorf("RunExtension() exit code = %d, want 3", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	output := string(data)
	for _, want := range []string{
		EnvLedgerFile + "=" + expectedLedgerFile,
		EnvCurrency + "=XYZ",
		EnvVerbose + "=true",
		EnvInbox + "=inbox",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, but got:\n%s", want, output)
		}
	}
}

func TestExtensionNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if found, _ := RunExtension("missing", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}
