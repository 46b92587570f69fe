package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestCommandErrorWrapping(t *testing.T) {
	inner := errors.New("schema not found")
	err := NewCommandError("compile", inner)

	if !strings.Contains(err.Error(), "compile") {
		t.Errorf("Error() = %q, want command name included", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is() cannot see through CommandError")
	}
}
