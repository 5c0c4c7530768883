package groupkit

import (
	"iter"
	"sort"

	"go.llib.dev/frameless/pkg/errorkit"
)

// Collect drains the Iterator and materialises the whole tree below it.
// Every Node field that holds an Iterator is replaced with the []Node collected from it.
// When FlattenLast is enabled, the fields of the last child are merged into its parent Node.
// On a key collision the child wins, its own children field included.
//
// Collect closes the Iterator.
func Collect(i Iterator, opts ...CollectOption) ([]Node, error) {
	return collect(i, toCollectConfig(opts))
}

func collect(i Iterator, c CollectConfig) (_ []Node, rErr error) {
	defer func() { rErr = errorkit.Merge(rErr, i.Close()) }()
	nodes := make([]Node, 0)
	for i.Next() {
		node := i.Value()
		if err := expand(node, c); err != nil {
			return nodes, err
		}
		nodes = append(nodes, node)
	}
	return nodes, i.Err()
}

func expand(node Node, c CollectConfig) error {
	var keys []string
	for key, value := range node {
		if _, ok := value.(Iterator); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	var lists = make(map[string][]Node, len(keys))
	for _, key := range keys {
		children, err := collect(node[key].(Iterator), c)
		if err != nil {
			return err
		}
		node[key] = children
		lists[key] = children
	}
	if !c.FlattenLast {
		return nil
	}
	for _, key := range keys {
		children := lists[key]
		if len(children) == 0 {
			continue
		}
		for k, v := range children[len(children)-1] {
			node[k] = v
		}
	}
	return nil
}

// Seq turns a traversal level into an iter.Seq2.
// The level is closed when the iteration ends,
// and a source failure is yielded as the last element.
func Seq(i Iterator) iter.Seq2[Node, error] {
	return func(yield func(Node, error) bool) {
		defer i.Close()
		for i.Next() {
			if !yield(i.Value(), nil) {
				return
			}
		}
		if err := errorkit.Merge(i.Err(), i.Close()); err != nil {
			yield(nil, err)
		}
	}
}
