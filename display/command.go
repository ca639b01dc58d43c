package display

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/dex/errors"
)

// CallerEnv set to "agent" makes every command default to JSON output
const CallerEnv = "DEX_CALLER"

// IsAgentCaller reports whether dex is driven by a program rather than a person
func IsAgentCaller() bool {
	return os.Getenv(CallerEnv) == "agent"
}

// ShouldOutputJSON determines if a command should output JSON based on flags and caller detection
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return IsAgentCaller()
	}

	// Check if --json flag was explicitly set
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	// Check global --json flag
	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return IsAgentCaller()
}

// OutputJSON marshals v with MarshalJSON and prints it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
