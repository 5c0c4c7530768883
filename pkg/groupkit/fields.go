package groupkit

import (
	"fmt"
	"reflect"
)

// Field returns a key extractor that reads an exported struct field or a string keyed map entry by name.
// Pointers and interfaces are dereferenced.
// A missing field panics, the same way a faulty key extractor would.
func Field[R any](name string) func(R) any {
	return func(record R) any {
		return lookupField(reflect.ValueOf(record), name)
	}
}

func lookupField(v reflect.Value, name string) any {
	if !v.IsValid() {
		panic(fmt.Sprintf("groupkit: field %q of a nil record", name))
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			panic(fmt.Sprintf("groupkit: field %q of a nil %s", name, v.Type()))
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		f := v.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			panic(fmt.Sprintf("groupkit: %s has no exported field %q", v.Type(), name))
		}
		return f.Interface()
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			panic(fmt.Sprintf("groupkit: %s is not a string keyed map", v.Type()))
		}
		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if !e.IsValid() {
			panic(fmt.Sprintf("groupkit: %s has no %q key", v.Type(), name))
		}
		return e.Interface()
	default:
		panic(fmt.Sprintf("groupkit: %s has no fields (looking for %q)", v.Type(), name))
	}
}

// ByField creates a Grouping keyed by the named field.
// The field values must be comparable.
func ByField[R any](name string, combine Combiner[R]) Grouping[R] {
	return By(Field[R](name), combine)
}

// Pick returns a LeafFunc that copies the named fields into the Node.
func Pick[R any](names ...string) LeafFunc[R] {
	return func(record R) Node {
		node := make(Node, len(names))
		for _, name := range names {
			node[name] = lookupField(reflect.ValueOf(record), name)
		}
		return node
	}
}

// Combine returns a Combiner that copies the named fields into the Node
// and holds the children under SubKey.
func Combine[R any](names ...string) Combiner[R] {
	pick := Pick[R](names...)
	return func(record R, children Iterator) Node {
		node := pick(record)
		node[SubKey] = children
		return node
	}
}
