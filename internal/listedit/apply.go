package listedit

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docforge/internal/doctree"
)

// Command names accepted by Apply.
const (
	CmdToggleList = "toggle-list"
	CmdIndent     = "indent"
	CmdOutdent    = "outdent"
	CmdEnter      = "enter"
)

// ErrUnknownCommand is returned by Apply for an unrecognized command name.
var ErrUnknownCommand = errors.New("unknown command")

// Command is an editor command as it arrives from a client.
type Command struct {
	Name   string       `json:"command"`
	Format doctree.Kind `json:"format,omitempty"`
}

// Apply dispatches c. The result reports whether the command acted; errors
// are limited to malformed commands.
func (s *Session) Apply(c Command) (bool, error) {
	switch c.Name {
	case CmdToggleList:
		if !c.Format.IsList() {
			return false, fmt.Errorf("%s: %q is not a list format", c.Name, c.Format)
		}
		return s.ToggleList(c.Format), nil
	case CmdIndent:
		return s.Indent(), nil
	case CmdOutdent:
		return s.Outdent(), nil
	case CmdEnter:
		return s.Enter(), nil
	}
	return false, fmt.Errorf("%w %q", ErrUnknownCommand, c.Name)
}
