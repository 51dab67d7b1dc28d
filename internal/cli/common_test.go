package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/danieljhkim/devbackup/internal/engine"
)

// executeCommand runs rootCmd with args and fresh flag values.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var bufOut, bufErr bytes.Buffer
	rootCmd.SetOut(&bufOut)
	rootCmd.SetErr(&bufErr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

// resetFlags restores every flag to its default; cobra keeps values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := outputJSON(&buf, map[string]string{"test": "value"}); err != nil {
		t.Fatalf("outputJSON() error = %v", err)
	}

	var v map[string]string
	if err := json.Unmarshal(buf.Bytes(), &v); err != nil {
		t.Fatalf("outputJSON() produced invalid JSON: %v", err)
	}
	if v["test"] != "value" {
		t.Errorf("decoded = %v", v)
	}
}

func TestPrintFunctions(t *testing.T) {
	var out bytes.Buffer

	PrintSuccess(&out, "Success message")
	PrintWarning(&out, "Warning message")
	PrintError(&out, "Error message")
	PrintList(&out, []string{"first", "second"}, 1)

	for _, want := range []string{"Success message", "Warning message", "Error message", "• second"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q missing %q", out.String(), want)
		}
	}
}

func TestPrintCount(t *testing.T) {
	if got := PrintCount(1, "item", "items"); got != "1 item" {
		t.Errorf("PrintCount(1) = %q", got)
	}
	if got := PrintCount(3, "item", "items"); got != "3 items" {
		t.Errorf("PrintCount(3) = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		wantStdout string
		wantStderr string
	}{
		{"success", nil, 0, "", ""},
		{"interrupt", fmt.Errorf("%w: context canceled", engine.ErrInterrupted), 0, InterruptedMessage, ""},
		{"prepare failure", fmt.Errorf("%w: system: denied", engine.ErrPrepare), 1, "", "Error: prepare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := ExitCode(&stdout, &stderr, tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
			if tt.err == nil && stdout.Len()+stderr.Len() != 0 {
				t.Error("expected no output on success")
			}
		})
	}
}
