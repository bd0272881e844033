package packs

import "fmt"

// Kind names an asset category.
type Kind string

const (
	KindCommand Kind = "command"
	KindAgent   Kind = "agent"
	KindSkill   Kind = "skill"
	KindMCP     Kind = "mcp"
)

// ConflictError reports two selected packs contributing the same asset name.
type ConflictError struct {
	Kind Kind
	Name string
	// Packs holds the pack that first claimed the name and the pack that
	// collided with it.
	Packs [2]string
}

func (e *ConflictError) Error() string {
	if e.Packs[0] != "" && e.Packs[1] != "" {
		return fmt.Sprintf("%s name conflict: %s (packs %s and %s)", e.Kind, e.Name, e.Packs[0], e.Packs[1])
	}
	return fmt.Sprintf("%s name conflict: %s", e.Kind, e.Name)
}

// UnknownPackError reports a selected pack missing from the registry.
type UnknownPackError struct {
	Name string
}

func (e *UnknownPackError) Error() string {
	return fmt.Sprintf("unknown plugin pack: %s", e.Name)
}
