package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEdgesMatchesWellFormedLines(t *testing.T) {
	text := "Intro paragraph, no edge here.\n" +
		"UserService -- calls --> AuthClient\n" +
		"  OrderRepo --owns--> Order\n" +
		"not an edge at all\n"

	edges := parseEdges(text)

	assert.Equal(t, []diagramEdge{
		{From: "UserService", Relation: "calls", To: "AuthClient"},
		{From: "OrderRepo", Relation: "owns", To: "Order"},
	}, edges)
}

func TestParseEdgesEmptyOnNoMatches(t *testing.T) {
	assert.Empty(t, parseEdges("nothing resembling an edge here"))
}
