package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Group is one node of the chart-of-accounts tree: accounts sharing a
// code prefix, with rolled-up balances.
type Group struct {
	Prefix   string               `json:"prefix"`
	Balance  decimal.Decimal      `json:"balance"`
	Accounts []AccountWithBalance `json:"accounts,omitempty"`
	Children []Group              `json:"children,omitempty"`
}

type AccountWithBalance struct {
	Account
	Balance decimal.Decimal `json:"balance"`
}

// prefixWidths are the code prefix lengths per tree level: classes,
// subclasses, account groups.
var prefixWidths = [...]int{1, 2, 4}

const MaxTreeDepth = len(prefixWidths)

// GroupByPrefix builds a tree of the given depth (1 to 3 levels) with
// accounts attached at the deepest level. The result is sorted by
// prefix and does not depend on input order.
func GroupByPrefix(accounts []AccountWithBalance, depth int) []Group {
	if depth < 1 {
		depth = 1
	}
	if depth > MaxTreeDepth {
		depth = MaxTreeDepth
	}

	valid := make([]AccountWithBalance, 0, len(accounts))
	for _, account := range accounts {
		if strings.TrimSpace(account.Code) == "" {
			continue
		}
		valid = append(valid, account)
	}
	if len(valid) == 0 {
		return []Group{}
	}
	return groupLevel(valid, 0, depth)
}

func groupLevel(accounts []AccountWithBalance, level, depth int) []Group {
	width := prefixWidths[level]
	buckets := map[string][]AccountWithBalance{}
	for _, account := range accounts {
		prefix := account.Code
		if len(prefix) > width {
			prefix = prefix[:width]
		}
		buckets[prefix] = append(buckets[prefix], account)
	}

	groups := make([]Group, 0, len(buckets))
	for prefix, members := range buckets {
		group := Group{Prefix: prefix, Balance: decimal.Zero}
		for _, member := range members {
			group.Balance = group.Balance.Add(member.Balance)
		}
		if level+1 < depth {
			group.Children = groupLevel(members, level+1, depth)
		} else {
			sort.Slice(members, func(i, j int) bool { return members[i].Code < members[j].Code })
			group.Accounts = members
		}
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Prefix < groups[j].Prefix })
	return groups
}
