package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLex(t *testing.T, sql string) []Token {
	t.Helper()
	toks, err := Lex(sql)
	require.NoError(t, err)
	return toks
}

func TestClassify_AllowsPlainSelect(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Classify(mustLex(t, "SELECT * FROM orders WHERE id = 1")))
}

func TestClassify_RejectsEveryForbiddenKeyword(t *testing.T) {
	t.Parallel()
	statements := map[string]string{
		"INSERT":   "INSERT INTO t VALUES (1)",
		"UPDATE":   "UPDATE t SET a = 1",
		"DELETE":   "DELETE FROM t",
		"DROP":     "DROP TABLE t",
		"TRUNCATE": "TRUNCATE TABLE t",
		"ALTER":    "ALTER TABLE t ADD COLUMN c INT",
		"CREATE":   "CREATE TABLE t (id INT)",
		"GRANT":    "GRANT SELECT ON t TO ROLE r",
		"REVOKE":   "REVOKE SELECT ON t FROM ROLE r",
		"COMMIT":   "COMMIT",
		"ROLLBACK": "ROLLBACK",
	}
	for keyword, sql := range statements {
		t.Run(keyword, func(t *testing.T) {
			err := Classify(mustLex(t, sql))
			require.Error(t, err)
			rej, ok := AsRejection(err)
			require.True(t, ok)
			assert.Equal(t, RejectForbiddenKeyword, rej.Kind)
			assert.Equal(t, keyword, rej.Detail)
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()
	err := Classify(mustLex(t, "drop table t"))
	require.Error(t, err)
	rej, _ := AsRejection(err)
	assert.Equal(t, "DROP", rej.Detail)
}

func TestClassify_WordBoundaries(t *testing.T) {
	t.Parallel()
	// Column names containing a forbidden keyword as a substring are fine.
	assert.NoError(t, Classify(mustLex(t, "SELECT inserted_at, last_update FROM t")))
	assert.NoError(t, Classify(mustLex(t, "SELECT dropped, created FROM t")))
}

func TestClassify_KeywordInCommentIgnored(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Classify(mustLex(t, "SELECT 1 -- DROP TABLE t")))
	assert.NoError(t, Classify(mustLex(t, "SELECT /* DELETE FROM t */ 1")))
}

func TestClassify_KeywordInLiteralIgnored(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Classify(mustLex(t, "SELECT '--INSERT marker' FROM T")))
	assert.NoError(t, Classify(mustLex(t, "SELECT 'DROP TABLE x' FROM t")))
}

func TestClassify_TrailingSemicolonTolerated(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Classify(mustLex(t, "SELECT 1;")))
	assert.NoError(t, Classify(mustLex(t, "SELECT 1; -- done")))
}

func TestClassify_MultiStatementRejected(t *testing.T) {
	t.Parallel()
	err := Classify(mustLex(t, "SELECT 1; SELECT 2"))
	require.Error(t, err)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectMalformedStatement, rej.Kind)
}

func TestClassify_BatchWithForbiddenSecondStatement(t *testing.T) {
	t.Parallel()
	// Never accepted; the forbidden keyword is hit in scan order.
	err := Classify(mustLex(t, "SELECT * FROM T1; DELETE FROM T1"))
	require.Error(t, err)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectForbiddenKeyword, rej.Kind)
	assert.Equal(t, "DELETE", rej.Detail)
}

func TestSanitize_StripsComments(t *testing.T) {
	t.Parallel()
	got := Sanitize(mustLex(t, "SELECT 1 /* note */ FROM t -- tail"))
	assert.Equal(t, "SELECT 1 FROM t", got)
}

func TestSanitize_DropsTrailingSemicolon(t *testing.T) {
	t.Parallel()
	got := Sanitize(mustLex(t, "SELECT 1;"))
	assert.Equal(t, "SELECT 1", got)
}

func TestSanitize_PreservesAdjacency(t *testing.T) {
	t.Parallel()
	got := Sanitize(mustLex(t, "SELECT  *   FROM\n\tFNF.PRCS.ORDERS"))
	assert.Equal(t, "SELECT * FROM FNF.PRCS.ORDERS", got)
}

func TestSanitize_CommentBetweenTokensLeavesGap(t *testing.T) {
	t.Parallel()
	got := Sanitize(mustLex(t, "SELECT/* x */1"))
	assert.Equal(t, "SELECT 1", got)
}
