// Package fixtures provides randomised, pre-sorted record sets for tests.
package fixtures

import (
	"fmt"

	"github.com/Pallinder/go-randomdata"
)

// Visit is a three level record: visits grouped by region, then by city.
type Visit struct {
	Region string `json:"region"`
	City   string `json:"city"`
	Guest  string `json:"guest"`
}

// Visits generates records sorted by Region then City.
// Group sizes are random, and every group has at least one record.
// The index prefix keeps the names unique and the order stable.
func Visits(regions int) []Visit {
	var vs []Visit
	for r := 0; r < regions; r++ {
		region := fmt.Sprintf("%02d-%s", r, randomdata.SillyName())
		for c, cities := 0, randomdata.Number(1, 4); c < cities; c++ {
			city := fmt.Sprintf("%02d-%s", c, randomdata.City())
			for g, guests := 0, randomdata.Number(1, 5); g < guests; g++ {
				vs = append(vs, Visit{
					Region: region,
					City:   city,
					Guest:  randomdata.SillyName(),
				})
			}
		}
	}
	return vs
}

// Triple is the foo/bar/baz record of the grouping examples.
type Triple struct {
	Foo int `json:"foo"`
	Bar int `json:"bar"`
	Baz int `json:"baz"`
}

// Triples returns every combination of foo∈[0,foo), bar∈[0,bar), baz∈[0,baz) in lexical order.
func Triples(foo, bar, baz int) []Triple {
	var ts []Triple
	for i := 0; i < foo; i++ {
		for j := 0; j < bar; j++ {
			for k := 0; k < baz; k++ {
				ts = append(ts, Triple{Foo: i, Bar: j, Baz: k})
			}
		}
	}
	return ts
}
