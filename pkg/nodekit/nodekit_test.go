package nodekit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.llib.dev/testcase"

	"go.llib.dev/groupkit/internal/fixtures"
	"go.llib.dev/groupkit/pkg/groupkit"
	"go.llib.dev/groupkit/pkg/nodekit"
)

var visitSpec = groupkit.Spec[fixtures.Visit]{
	Groupings: []groupkit.Grouping[fixtures.Visit]{
		groupkit.By(func(v fixtures.Visit) string { return v.Region }, func(v fixtures.Visit, sub groupkit.Iterator) groupkit.Node {
			return groupkit.Node{"region": v.Region, groupkit.SubKey: sub}
		}),
		groupkit.By(func(v fixtures.Visit) string { return v.City }, func(v fixtures.Visit, sub groupkit.Iterator) groupkit.Node {
			return groupkit.Node{"city": v.City, groupkit.SubKey: sub}
		}),
	},
	Leaf: func(v fixtures.Visit) groupkit.Node { return groupkit.Node{"guest": v.Guest} },
}

type Region struct {
	Name   string `node:"region"`
	Cities []City `node:"sub"`
}

type City struct {
	Name   string  `node:"city"`
	Guests []Guest `node:"sub"`
}

type Guest struct {
	Name string `node:"guest"`
}

func visitTree(t *testcase.T, visits []fixtures.Visit) []groupkit.Node {
	root, err := visitSpec.Build(context.Background(), groupkit.FromSlice(visits))
	t.Must.NoError(err)
	nodes, err := root.List()
	t.Must.NoError(err)
	return nodes
}

func TestNodekit(t *testing.T) {
	s := testcase.NewSpec(t)

	var (
		visits = testcase.Let(s, func(t *testcase.T) []fixtures.Visit {
			return fixtures.Visits(t.Random.IntB(1, 4))
		})
		tree = testcase.Let(s, func(t *testcase.T) []groupkit.Node {
			return visitTree(t, visits.Get(t))
		})
		lazy = testcase.Let(s, func(t *testcase.T) []groupkit.Node {
			root, err := visitSpec.Build(context.Background(), groupkit.FromSlice(visits.Get(t)))
			t.Must.NoError(err)
			t.Defer(root.Close)
			t.Must.True(root.Next())
			return []groupkit.Node{root.Value()}
		})
	)

	s.Describe("EncodeJSON", func(s *testcase.Spec) {
		s.Then("the tree is written as nested JSON arrays", func(t *testcase.T) {
			var buf bytes.Buffer
			t.Must.NoError(nodekit.EncodeJSON(&buf, tree.Get(t)))

			var got []Region
			t.Must.NoError(json.Unmarshal(buf.Bytes(), &[]any{}))
			t.Must.NoError(nodekit.Decode(tree.Get(t), &got))
			t.Must.Equal(expectedRegions(visits.Get(t)), got)
		})

		s.Then("an unmaterialised tree is rejected", func(t *testcase.T) {
			err := nodekit.EncodeJSON(&bytes.Buffer{}, lazy.Get(t))
			t.Must.True(errors.Is(err, nodekit.ErrNotMaterialized))
		})
	})

	s.Describe("EncodeYAML", func(s *testcase.Spec) {
		visits.Let(s, func(t *testcase.T) []fixtures.Visit {
			return []fixtures.Visit{
				{Region: "north", City: "oslo", Guest: "ada"},
				{Region: "north", City: "oslo", Guest: "bob"},
				{Region: "south", City: "rome", Guest: "cyd"},
			}
		})

		s.Then("the tree is written as a YAML sequence", func(t *testcase.T) {
			var buf bytes.Buffer
			t.Must.NoError(nodekit.EncodeYAML(&buf, tree.Get(t)))
			out := buf.String()
			for _, exp := range []string{"region: north", "city: oslo", "guest: ada", "guest: bob", "region: south", "guest: cyd", "sub:"} {
				t.Must.Contain(out, exp)
			}
		})

		s.Then("an unmaterialised tree is rejected", func(t *testcase.T) {
			err := nodekit.EncodeYAML(&bytes.Buffer{}, lazy.Get(t))
			t.Must.True(errors.Is(err, nodekit.ErrNotMaterialized))
		})
	})

	s.Describe("Decode", func(s *testcase.Spec) {
		s.Then("nodes are mapped onto tagged structs", func(t *testcase.T) {
			var got []Region
			t.Must.NoError(nodekit.Decode(tree.Get(t), &got))
			t.Must.Equal(expectedRegions(visits.Get(t)), got)
		})
	})

	s.Describe("Select", func(s *testcase.Spec) {
		visits.Let(s, func(t *testcase.T) []fixtures.Visit {
			return []fixtures.Visit{
				{Region: "north", City: "oslo", Guest: "ada"},
				{Region: "north", City: "bergen", Guest: "bob"},
				{Region: "south", City: "rome", Guest: "cyd"},
			}
		})

		s.Then("the expression selects from the tree", func(t *testcase.T) {
			got, err := nodekit.Select(tree.Get(t), "$[*].region")
			t.Must.NoError(err)
			t.Must.Equal([]any{"north", "south"}, got)

			got, err = nodekit.Select(tree.Get(t), "$[0].sub[*].city")
			t.Must.NoError(err)
			t.Must.Equal([]any{"oslo", "bergen"}, got)
		})

		s.Then("an invalid expression is reported", func(t *testcase.T) {
			_, err := nodekit.Select(tree.Get(t), "$[")
			t.Must.True(errors.Is(err, nodekit.ErrInvalidPath))
		})
	})
}

func expectedRegions(visits []fixtures.Visit) []Region {
	var rs []Region
	for _, v := range visits {
		if n := len(rs); n == 0 || rs[n-1].Name != v.Region {
			rs = append(rs, Region{Name: v.Region})
		}
		r := &rs[len(rs)-1]
		if n := len(r.Cities); n == 0 || r.Cities[n-1].Name != v.City {
			r.Cities = append(r.Cities, City{Name: v.City})
		}
		c := &r.Cities[len(r.Cities)-1]
		c.Guests = append(c.Guests, Guest{Name: v.Guest})
	}
	return rs
}
