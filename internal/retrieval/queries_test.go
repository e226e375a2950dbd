package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCompliant(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   bool
	}{
		{"no information phrase", "There is no information about dependency injection here.", true},
		{"does not contain phrase", "The codebase does not contain any oversized components.", true},
		{"empty response case-insensitive", "EMPTY RESPONSE", true},
		{"do not contain phrase", "These modules do not contain duplicated resource handling.", true},
		{"not contain any phrase", "This package does not not contain any matches", true},
		{"real finding", "UserService constructs its own DB connection directly in its constructor.", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, isCompliant(c.answer))
		})
	}
}
