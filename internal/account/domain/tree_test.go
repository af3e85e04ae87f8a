package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acc(code string, balance string) AccountWithBalance {
	return AccountWithBalance{
		Account: Account{Code: code, Name: "acct " + code, Type: TypeAsset},
		Balance: decimal.RequireFromString(balance),
	}
}

func TestGroupByPrefix(t *testing.T) {
	tree := GroupByPrefix([]AccountWithBalance{
		acc("7000", "100.00"),
		acc("1100", "25.50"),
		acc("1200", "10.00"),
		acc("1110", "4.50"),
	}, 2)

	require.Len(t, tree, 2)

	class1 := tree[0]
	assert.Equal(t, "1", class1.Prefix)
	assert.True(t, class1.Balance.Equal(decimal.RequireFromString("40.00")), "class 1 balance %s", class1.Balance)
	require.Len(t, class1.Children, 2)
	assert.Equal(t, "11", class1.Children[0].Prefix)
	assert.True(t, class1.Children[0].Balance.Equal(decimal.RequireFromString("30.00")))
	require.Len(t, class1.Children[0].Accounts, 2)
	assert.Equal(t, "1100", class1.Children[0].Accounts[0].Code)
	assert.Equal(t, "1110", class1.Children[0].Accounts[1].Code)
	assert.Equal(t, "12", class1.Children[1].Prefix)

	class7 := tree[1]
	assert.Equal(t, "7", class7.Prefix)
	assert.True(t, class7.Balance.Equal(decimal.RequireFromString("100.00")))
}

func TestGroupByPrefixDepth(t *testing.T) {
	accounts := []AccountWithBalance{
		acc("11001", "1.00"),
		acc("11002", "2.00"),
		acc("1110", "4.00"),
	}

	flat := GroupByPrefix(accounts, 1)
	require.Len(t, flat, 1)
	assert.Equal(t, "1", flat[0].Prefix)
	assert.Empty(t, flat[0].Children)
	require.Len(t, flat[0].Accounts, 3)

	deep := GroupByPrefix(accounts, 3)
	require.Len(t, deep, 1)
	require.Len(t, deep[0].Children, 1)
	sub := deep[0].Children[0]
	assert.Equal(t, "11", sub.Prefix)
	require.Len(t, sub.Children, 2)
	assert.Equal(t, "1100", sub.Children[0].Prefix)
	require.Len(t, sub.Children[0].Accounts, 2)
	assert.Equal(t, "1110", sub.Children[1].Prefix)
	assert.True(t, sub.Children[1].Balance.Equal(decimal.RequireFromString("4.00")))

	// Out-of-range depths clamp instead of failing.
	assert.Equal(t, flat, GroupByPrefix(accounts, 0))
	assert.Equal(t, deep, GroupByPrefix(accounts, 8))
}

func TestGroupByPrefixOrderIndependent(t *testing.T) {
	a := []AccountWithBalance{acc("1100", "1"), acc("4300", "2"), acc("1200", "3")}
	b := []AccountWithBalance{acc("1200", "3"), acc("1100", "1"), acc("4300", "2")}

	ta := GroupByPrefix(a, 2)
	tb := GroupByPrefix(b, 2)

	require.Equal(t, len(ta), len(tb))
	for i := range ta {
		assert.Equal(t, ta[i].Prefix, tb[i].Prefix)
		assert.True(t, ta[i].Balance.Equal(tb[i].Balance))
	}
}

func TestGroupByPrefixEmpty(t *testing.T) {
	assert.Empty(t, GroupByPrefix(nil, 2))
}
