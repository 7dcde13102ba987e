package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailShape(t *testing.T) {
	rules := credentialRules{v: NewValidator()}

	for _, ok := range []string{"a@b.co", "first.last+tag@sub.example.org", "x@y.z"} {
		assert.NoError(t, rules.email(ok), ok)
	}
	for _, bad := range []string{"", "plain", "a@b", "@b.com", "a@.com.", "a@@b.com", "a b@c.com", "a@b .com"} {
		assert.Error(t, rules.email(bad), bad)
	}
}
