package core

import "fmt"

// CaseDefinition is a named, optionally active case template.
type CaseDefinition struct {
	ID          *int64  `json:"id"`
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Active      *bool   `json:"active"`
}

// HasIdentity reports whether the store has assigned an identity.
func (c *CaseDefinition) HasIdentity() bool {
	return c != nil && c.ID != nil
}

// SameIdentity reports whether both case definitions are persisted under the same identity.
// Unsaved entities are never equal to anything, not even themselves.
func (c *CaseDefinition) SameIdentity(other *CaseDefinition) bool {
	if !c.HasIdentity() || !other.HasIdentity() {
		return false
	}
	return *c.ID == *other.ID
}

// Clone returns a deep copy so callers cannot mutate stored values.
func (c *CaseDefinition) Clone() *CaseDefinition {
	if c == nil {
		return nil
	}
	return &CaseDefinition{
		ID:          clonePtr(c.ID),
		Name:        clonePtr(c.Name),
		Description: clonePtr(c.Description),
		Active:      clonePtr(c.Active),
	}
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("CaseDefinition{id=%s, name=%s, description=%s, active=%s}",
		formatPtr(c.ID), formatPtr(c.Name), formatPtr(c.Description), formatPtr(c.Active))
}

// CaseDefinitionPatch is a merge-patch body for a case definition.
type CaseDefinitionPatch struct {
	ID          *int64        `json:"id"`
	Name        Field[string] `json:"name,omitzero" validate:"omitempty,max=255"`
	Description Field[string] `json:"description,omitzero" validate:"omitempty,max=255"`
	Active      Field[bool]   `json:"active,omitzero"`
}

// ApplyTo merges the present fields into existing.
func (p *CaseDefinitionPatch) ApplyTo(existing *CaseDefinition) {
	p.Name.Apply(&existing.Name)
	p.Description.Apply(&existing.Description)
	p.Active.Apply(&existing.Active)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func formatPtr[T any](p *T) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("'%v'", *p)
}
