package material

import (
	"fmt"
	"strings"
)

// UnsupportedHostProgramError reports a splice attempt on a host
// program lacking one or more required extension points or required
// symbols. The splice is abandoned and the program left unmodified;
// the caller decides whether to render without the material.
type UnsupportedHostProgramError struct {
	Missing        []ExtensionPoint
	MissingSymbols []string
}

func (e *UnsupportedHostProgramError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, p := range e.Missing {
			names[i] = p.String()
		}
		parts = append(parts, "extension points: "+strings.Join(names, ", "))
	}
	if len(e.MissingSymbols) > 0 {
		parts = append(parts, "symbols: "+strings.Join(e.MissingSymbols, ", "))
	}
	return fmt.Sprintf("material: host program missing %s",
		strings.Join(parts, "; "))
}
