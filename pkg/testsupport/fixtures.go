package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

// Entity is the record used across the package tests. It carries a numeric
// primary key and a unique string code.
type Entity struct {
	bun.BaseModel `bun:"table:entities,alias:e" json:"-" msgpack:"-"`

	ID   int64  `bun:"id,pk" json:"id" msgpack:"id"`
	Code string `bun:"code,unique,notnull" json:"code" msgpack:"code"`
	Name string `bun:"name" json:"name" msgpack:"name"`
}

// EntityID returns the primary key of e.
func EntityID(e Entity) int64 { return e.ID }

// EntityCode returns the unique key of e.
func EntityCode(e Entity) string { return e.Code }

// SampleEntities returns n entities with IDs 1..n, codes "001".. and names
// "entity1"...
func SampleEntities(n int) []Entity {
	out := make([]Entity, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, NewEntity(int64(i)))
	}
	return out
}

// NewEntity returns the sample entity with the given id.
func NewEntity(id int64) Entity {
	return Entity{ID: id, Code: fmt.Sprintf("%03d", id), Name: fmt.Sprintf("entity%d", id)}
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadEntities loads a JSON array of entities from a fixture file.
func LoadEntities(t testing.TB, path string) []Entity {
	t.Helper()

	var entities []Entity
	LoadFixtureJSON(t, path, &entities)
	return entities
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
