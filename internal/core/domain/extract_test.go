package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func extract(t *testing.T, sql string) []string {
	t.Helper()
	return ExtractObjectRefs(mustLex(t, sql))
}

func TestExtractObjectRefs_SimpleFrom(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"orders"}, extract(t, "SELECT * FROM orders"))
}

func TestExtractObjectRefs_QualifiedName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"FNF.PRCS.ORDERS"}, extract(t, "SELECT * FROM FNF.PRCS.ORDERS WHERE id = 1"))
}

func TestExtractObjectRefs_Joins(t *testing.T) {
	t.Parallel()
	refs := extract(t, "SELECT * FROM t1 JOIN t2 ON t1.id = t2.id LEFT JOIN s.t3 ON t2.id = t3.id")
	assert.Equal(t, []string{"t1", "t2", "s.t3"}, refs)
}

func TestExtractObjectRefs_CommaList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"a", "b", "d"}, extract(t, "SELECT * FROM a, b c, d WHERE x = 1"))
}

func TestExtractObjectRefs_Aliases(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"orders"}, extract(t, "SELECT o.id FROM orders AS o WHERE o.id = 1"))
	assert.Equal(t, []string{"orders"}, extract(t, "SELECT o.id FROM orders o"))
}

func TestExtractObjectRefs_SubqueryContributesNothing(t *testing.T) {
	t.Parallel()
	assert.Empty(t, extract(t, "SELECT * FROM (SELECT 1)"))
}

func TestExtractObjectRefs_MalformedChunkComesBackWhole(t *testing.T) {
	t.Parallel()
	// Token adjacency reassembles the hyphenated chunk so the validator can
	// refuse it instead of silently checking just "my".
	assert.Equal(t, []string{"my-table"}, extract(t, "SELECT * FROM my-table"))
}

func TestExtractObjectRefs_SpacedQualifiersJoin(t *testing.T) {
	t.Parallel()
	// The dot joins segments across whitespace and comments, so the first
	// segment alone never stands in for the full name.
	for _, sql := range []string{
		"SELECT * FROM OTHERDB . PUBLIC . T1",
		"SELECT * FROM OTHERDB/**/.PUBLIC.T1",
		"SELECT * FROM OTHERDB\n.PUBLIC.T1",
		"SELECT * FROM OTHERDB.\nPUBLIC.T1",
	} {
		assert.Equal(t, []string{"OTHERDB.PUBLIC.T1"}, extract(t, sql), "input %q", sql)
	}
}

func TestExtractObjectRefs_Dedup(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"t"}, extract(t, "SELECT * FROM t JOIN t ON 1 = 1"))
}

func TestExtractObjectRefs_KeywordInCommentNotIntroducer(t *testing.T) {
	t.Parallel()
	assert.Empty(t, extract(t, "SELECT 1 -- FROM ghost_table"))
}

func TestExtractObjectRefs_Into(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"dst"}, extract(t, "MERGE INTO dst USING src"))
}

func TestExtractObjectRefs_NoClauses(t *testing.T) {
	t.Parallel()
	assert.Empty(t, extract(t, "SELECT 1 + 1"))
}
