package core

import "fmt"

// Examine is an examination that may reference one CaseDefinition.
//
// The reference is weak: CaseDefinitionID is a nullable foreign key and
// CaseDefinition is only populated when the store resolves it on read.
type Examine struct {
	ID               *int64          `json:"id"`
	Name             *string         `json:"name" validate:"omitempty,max=255"`
	CaseDefinitionID *int64          `json:"caseDefinitionId" validate:"omitempty,gt=0"`
	CaseDefinition   *CaseDefinition `json:"caseDefinition"`
}

// HasIdentity reports whether the store has assigned an identity.
func (e *Examine) HasIdentity() bool {
	return e != nil && e.ID != nil
}

// SameIdentity reports whether both examines are persisted under the same identity.
func (e *Examine) SameIdentity(other *Examine) bool {
	if !e.HasIdentity() || !other.HasIdentity() {
		return false
	}
	return *e.ID == *other.ID
}

// NormalizeReference folds a nested caseDefinition object into CaseDefinitionID.
// An explicit caseDefinitionId wins over the nested object.
func (e *Examine) NormalizeReference() {
	if e.CaseDefinitionID == nil && e.CaseDefinition.HasIdentity() {
		e.CaseDefinitionID = clonePtr(e.CaseDefinition.ID)
	}
	e.CaseDefinition = nil
}

// Clone returns a deep copy so callers cannot mutate stored values.
func (e *Examine) Clone() *Examine {
	if e == nil {
		return nil
	}
	return &Examine{
		ID:               clonePtr(e.ID),
		Name:             clonePtr(e.Name),
		CaseDefinitionID: clonePtr(e.CaseDefinitionID),
		CaseDefinition:   e.CaseDefinition.Clone(),
	}
}

func (e *Examine) String() string {
	return fmt.Sprintf("Examine{id=%s, name=%s, caseDefinitionId=%s}",
		formatPtr(e.ID), formatPtr(e.Name), formatPtr(e.CaseDefinitionID))
}

// ExaminePatch is a merge-patch body for an examine. The reference may be
// given flat or as a nested object, the flat key wins when both are present.
type ExaminePatch struct {
	ID               *int64                `json:"id"`
	Name             Field[string]         `json:"name,omitzero" validate:"omitempty,max=255"`
	CaseDefinitionID Field[int64]          `json:"caseDefinitionId,omitzero" validate:"omitempty,gt=0"`
	CaseDefinition   Field[CaseDefinition] `json:"caseDefinition,omitzero"`
}

// ApplyTo merges the present fields into existing. A changed reference drops
// the resolved CaseDefinition so it is looked up again on the next read.
func (p *ExaminePatch) ApplyTo(existing *Examine) {
	p.Name.Apply(&existing.Name)

	switch {
	case p.CaseDefinitionID.Present():
		p.CaseDefinitionID.Apply(&existing.CaseDefinitionID)
	case p.CaseDefinition.Present():
		ref, ok := p.CaseDefinition.Value()
		if ok && ref.HasIdentity() {
			existing.CaseDefinitionID = clonePtr(ref.ID)
		} else {
			existing.CaseDefinitionID = nil
		}
	default:
		return
	}
	existing.CaseDefinition = nil
}
