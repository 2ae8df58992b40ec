// Package permissions checks the OS grants a host needs before it can
// capture the screen and inject input.
package permissions

import (
	"fmt"
	"strings"
)

// MissingError lists the grants the process lacks.
type MissingError struct {
	Missing []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing permissions: %s (grant them in System Settings > Privacy & Security, then restart)",
		strings.Join(e.Missing, ", "))
}

// grant is one OS permission with its check and request hooks.
type grant struct {
	name    string
	has     func() bool
	request func() bool
}

// Check reports a *MissingError naming every grant the host lacks. When
// prompt is set, the OS is asked to show its permission dialog for each.
func Check(prompt bool) error {
	return check(platformGrants(), prompt)
}

func check(grants []grant, prompt bool) error {
	var missing []string
	for _, g := range grants {
		if g.has() {
			continue
		}
		if prompt && g.request() {
			continue
		}
		missing = append(missing, g.name)
	}
	if len(missing) > 0 {
		return &MissingError{Missing: missing}
	}
	return nil
}
