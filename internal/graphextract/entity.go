// Package graphextract turns split text into schema-constrained property
// graph triplets: a cheap regex pass seeds candidate entities, then an LLM
// pass assigns relations between them and a validating parser drops
// anything outside the fixed entity/relation schema.
package graphextract

// EntityType is a schema-constrained entity kind. Which vocabulary a given
// type belongs to — code or business — is fixed; a triplet is schema-valid
// only against the vocabulary matching its collection's ContentKind.
type EntityType string

const (
	Class    EntityType = "Class"
	Function EntityType = "Function"
	Method   EntityType = "Method"
	Variable EntityType = "Variable"
	Endpoint EntityType = "Endpoint"
	Database EntityType = "Database"
	Service  EntityType = "Service"
	Module   EntityType = "Module"

	Rule        EntityType = "Rule"
	Process     EntityType = "Process"
	Entity      EntityType = "Entity"
	Constraint  EntityType = "Constraint"
	Requirement EntityType = "Requirement"
	UseCase     EntityType = "UseCase"
	Actor       EntityType = "Actor"
	System      EntityType = "System"
)

// ContentKind selects which entity-type vocabulary a collection's triplets
// are validated against.
type ContentKind string

const (
	CodeContent     ContentKind = "code"
	BusinessContent ContentKind = "business"
)

var codeEntityTypes = map[EntityType]bool{
	Class: true, Function: true, Method: true, Variable: true,
	Endpoint: true, Database: true, Service: true, Module: true,
}

var businessEntityTypes = map[EntityType]bool{
	Rule: true, Process: true, Entity: true, Constraint: true,
	Requirement: true, UseCase: true, Actor: true, System: true,
}

// validEntityType reports whether t belongs to kind's vocabulary. An
// unrecognized kind validates against neither.
func validEntityType(kind ContentKind, t EntityType) bool {
	switch kind {
	case CodeContent:
		return codeEntityTypes[t]
	case BusinessContent:
		return businessEntityTypes[t]
	default:
		return false
	}
}

// Relation is a schema-constrained relation kind.
type Relation string

const (
	Calls      Relation = "calls"
	Imports    Relation = "imports"
	Extends    Relation = "extends"
	Implements Relation = "implements"
	DependsOn  Relation = "depends_on"
	Defines    Relation = "defines"
	Uses       Relation = "uses"
	Returns    Relation = "returns"
	Throws     Relation = "throws"
	Validates  Relation = "validates"
	Triggers   Relation = "triggers"
	Owns       Relation = "owns"
)

var validRelations = map[Relation]bool{
	Calls: true, Imports: true, Extends: true, Implements: true,
	DependsOn: true, Defines: true, Uses: true, Returns: true,
	Throws: true, Validates: true, Triggers: true, Owns: true,
}

// NodeEntity is a candidate entity, named and typed.
type NodeEntity struct {
	Type EntityType
	Name string
}

// Triplet is a single extracted graph edge, carrying provenance back to the
// node it was extracted from.
type Triplet struct {
	Subject      NodeEntity
	Predicate    Relation
	Object       NodeEntity
	SourceNodeID string
}
