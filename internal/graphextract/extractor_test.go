package graphextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedCandidatesDedupesByTypeAndName(t *testing.T) {
	text := `
class UserService:
    def save(self):
        pass

func (s *UserService) Save() error {
	return nil
}
`
	candidates := seedCandidates(text)

	assert.Contains(t, candidates, NodeEntity{Type: Class, Name: "UserService"})
	assert.Contains(t, candidates, NodeEntity{Type: Function, Name: "save"})
	assert.Contains(t, candidates, NodeEntity{Type: Function, Name: "Save"})
}

func TestSeedCandidatesEmptyOnPlainProse(t *testing.T) {
	assert.Empty(t, seedCandidates("This paragraph declares nothing of interest."))
}

func TestParseTripletsValidatesSchema(t *testing.T) {
	completion := "Class:UserService | calls | Service:AuthClient\n" +
		"not a triplet line\n" +
		"Class:UserService | flies_to | Service:Mars\n" +
		"Bogus:Thing | calls | Service:AuthClient\n"

	triplets := parseTriplets(completion, "node-1", CodeContent)

	assert.Equal(t, []Triplet{
		{
			Subject:      NodeEntity{Type: Class, Name: "UserService"},
			Predicate:    Calls,
			Object:       NodeEntity{Type: Service, Name: "AuthClient"},
			SourceNodeID: "node-1",
		},
	}, triplets)
}

func TestParseTripletsGatesEntityTypesByContentKind(t *testing.T) {
	completion := "Rule:PricingPolicy | validates | Requirement:MaxDiscount\n"

	assert.Empty(t, parseTriplets(completion, "node-1", CodeContent),
		"business-only types must not validate for a code collection")
	assert.Equal(t, []Triplet{
		{
			Subject:      NodeEntity{Type: Rule, Name: "PricingPolicy"},
			Predicate:    Validates,
			Object:       NodeEntity{Type: Requirement, Name: "MaxDiscount"},
			SourceNodeID: "node-1",
		},
	}, parseTriplets(completion, "node-1", BusinessContent))

	codeCompletion := "Class:UserService | calls | Service:AuthClient\n"
	assert.Empty(t, parseTriplets(codeCompletion, "node-1", BusinessContent),
		"code-only types must not validate for a business collection")
}

func TestParseTypedEntityRejectsMissingColonOrType(t *testing.T) {
	_, ok := parseTypedEntity("UserService", CodeContent)
	assert.False(t, ok)

	_, ok = parseTypedEntity("Bogus:UserService", CodeContent)
	assert.False(t, ok)

	entity, ok := parseTypedEntity(" Class : UserService ", CodeContent)
	assert.True(t, ok)
	assert.Equal(t, NodeEntity{Type: Class, Name: "UserService"}, entity)

	_, ok = parseTypedEntity("Class:UserService", BusinessContent)
	assert.False(t, ok, "a code type must not validate under the business vocabulary")
}
