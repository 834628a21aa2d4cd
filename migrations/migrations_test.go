package migrations

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencesPattern = regexp.MustCompile(`REFERENCES (\w+)\(`)

func findMigration(t *testing.T, name string) migration {
	t.Helper()
	for _, m := range migrations {
		if m.name == name {
			return m
		}
	}
	require.Failf(t, "missing migration", "no migration named %s", name)
	return migration{}
}

func TestReferencedTablesAreCreatedFirst(t *testing.T) {
	created := map[string]bool{}
	for _, m := range migrations {
		for _, match := range referencesPattern.FindAllStringSubmatch(m.query, -1) {
			assert.True(t, created[match[1]], "%s references %s before it exists", m.name, match[1])
		}
		created[m.name] = true
	}
}

func TestOrderItemsKeyedByOrderAndPosition(t *testing.T) {
	query := findMigration(t, "order_items").query

	assert.Contains(t, query, "PRIMARY KEY (order_id, position)")
	assert.NotContains(t, query, "AUTO_INCREMENT")
}

func TestWalkInCustomerSeededLast(t *testing.T) {
	last := migrations[len(migrations)-1]

	assert.Equal(t, "walk-in customer", last.name)
	assert.Contains(t, last.query, "walk-in-customer-id")
	assert.Contains(t, last.query, "INSERT IGNORE")
}
