package json

import (
	"encoding/json"
	"reflect"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/invopop/jsonschema"

	"github.com/bububa/genchat"
)

var reflectorPool = sync.Pool{
	New: func() any {
		return new(jsonschema.Reflector)
	},
}

// Schema returns the JSON schema of the history document.
func (e *Encoder) Schema() ([]byte, error) {
	schema := JSONSchema(reflect.TypeOf(genchat.Document{}))
	return json.MarshalIndent(schema, "", "  ")
}

// JSONSchema reflects t. Struct definitions are keyed by a hash of their
// package path and name so equally named types never collide.
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := reflectorPool.Get().(*jsonschema.Reflector)
	defer reflectorPool.Put(r)
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			name = strconv.FormatUint(xxhash.Sum64String(t.PkgPath()+"/"+t.Name()), 10)
		}
		return name
	}
	return r.ReflectFromType(t)
}
