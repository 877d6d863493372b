package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/orgchart/pkg/model"
)

func searchTree(t *testing.T) *Tree {
	t.Helper()
	tree, _, err := Build([]model.PersonRecord{
		{ID: "1", Name: "Ada Lovelace", Title: "CEO"},
		{ID: "2", ParentID: "1", Name: "Grace Hopper", Title: "CTO"},
		{ID: "3", ParentID: "2", Name: "Alan Turing", Title: "Engineer"},
		{ID: "4", ParentID: "2", Name: "Adam Smith", Title: "Engineer", Office: "HQ"},
	})
	require.NoError(t, err)
	return tree
}

func matchIDs(tree *Tree, ms []Match) []string {
	ids := make([]string, len(ms))
	for i, m := range ms {
		ids[i] = tree.ID(m.Index)
	}
	return ids
}

func TestSearch_FuzzyByName(t *testing.T) {
	tree := searchTree(t)
	assert.Equal(t, []string{"1", "4"}, matchIDs(tree, tree.Search("ada")))
	assert.Equal(t, []string{"1", "4"}, matchIDs(tree, tree.Search("ADA")))
}

func TestSearch_MatchesTitleAndOffice(t *testing.T) {
	tree := searchTree(t)
	assert.Equal(t, []string{"3", "4"}, matchIDs(tree, tree.Search("engineer")))
	assert.Equal(t, []string{"4"}, matchIDs(tree, tree.Search("hq")))
}

func TestSearch_ExactIDFirst(t *testing.T) {
	tree := searchTree(t)
	got := tree.Search("3")
	require.NotEmpty(t, got)
	assert.Equal(t, "3", tree.ID(got[0].Index))
	assert.Zero(t, got[0].Distance)
}

func TestSearch_NoMatch(t *testing.T) {
	tree := searchTree(t)
	assert.Nil(t, tree.Search(""))
	assert.Nil(t, tree.Search("   "))
	assert.Empty(t, tree.Search("zzz"))
}
