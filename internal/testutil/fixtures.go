package testutil

import "github.com/roach88/kvquery/internal/value"

// Person builds a person record with an id, name and age.
func Person(id int, name string, age int) value.Object {
	return value.Object{
		"id":   value.Number(id),
		"name": value.String(name),
		"age":  value.Number(age),
	}
}

// People returns the two-record fixture used across query tests:
// Joe (id 1, age 30) and Ann (id 2, age 20).
func People() []value.Object {
	return []value.Object{
		Person(1, "Joe", 30),
		Person(2, "Ann", 20),
	}
}
