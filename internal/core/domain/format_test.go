package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_UppercasesKeywordsAndBreaksClauses(t *testing.T) {
	t.Parallel()
	got, err := Format("select id, name from users where id = 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name\nFROM users\nWHERE id = 1", got)
}

func TestFormat_QualifiedNamesStayTight(t *testing.T) {
	t.Parallel()
	got, err := Format("SELECT * FROM FNF.PRCS.ORDERS")
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM FNF.PRCS.ORDERS", got)
}

func TestFormat_JoinModifiersStayTogether(t *testing.T) {
	t.Parallel()
	got, err := Format("select * from a left outer join b on a.id = b.id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM a\nLEFT OUTER JOIN b ON a.id = b.id", got)
}

func TestFormat_FunctionCallsHugParens(t *testing.T) {
	t.Parallel()
	got, err := Format("select count (*) from t group by x")
	require.NoError(t, err)
	assert.Equal(t, "SELECT count(*)\nFROM t\nGROUP BY x", got)
}

func TestFormat_SubqueryClausesStayInline(t *testing.T) {
	t.Parallel()
	got, err := Format("SELECT * FROM (SELECT id FROM t WHERE x = 1) q")
	require.NoError(t, err)
	// No clause breaks inside parens.
	assert.Equal(t, "SELECT *\nFROM (SELECT id FROM t WHERE x = 1) q", got)
}

func TestFormat_PreservesLiteralsVerbatim(t *testing.T) {
	t.Parallel()
	got, err := Format("SELECT 'Select From  Where' FROM t")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'Select From  Where'\nFROM t", got)
}

func TestFormat_NonKeywordCasingUntouched(t *testing.T) {
	t.Parallel()
	got, err := Format("select CamelCol from MixedTable")
	require.NoError(t, err)
	assert.Equal(t, "SELECT CamelCol\nFROM MixedTable", got)
}

func TestFormat_OperatorsStayIntact(t *testing.T) {
	t.Parallel()
	got, err := Format("select * from t where a >= 1 and b != 2 or c <> 3")
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM t\nWHERE a >= 1 AND b != 2 OR c <> 3", got)
}

func TestFormat_CastAndConcat(t *testing.T) {
	t.Parallel()
	got, err := Format("select a::int, x || y from t")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a::int, x || y\nFROM t", got)
}

func TestFormat_ExponentLiterals(t *testing.T) {
	t.Parallel()
	got, err := Format("SELECT 1e-5, 2.5E+10 FROM t")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1e-5, 2.5E+10\nFROM t", got)
}

func TestFormat_Idempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"select id, name from users where id = 1",
		"SELECT * FROM FNF.PRCS.ORDERS",
		"select * from a left outer join b on a.id = b.id union all select * from c",
		"select count (*) , sum(x) from t group by x having count(*) > 1 order by x desc limit 10",
		"SELECT * FROM (SELECT id FROM t WHERE x = 1) q",
		"SELECT 1.5, 'a''b' FROM t",
		"select * from t where a >= 1 and b != 2 or c <> 3",
		"select a::int, x || y, 1e-5 from t",
	}
	for _, sql := range inputs {
		once, err := Format(sql)
		require.NoError(t, err)
		twice, err := Format(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "format must be idempotent for %q", sql)
	}
}

func TestFormat_UnterminatedInputErrors(t *testing.T) {
	t.Parallel()
	_, err := Format("SELECT 'abc")
	assert.Error(t, err)
}
