// Package schema provides field-schema introspection for dashboard documents.
//
// The Grafana API is tolerant of missing fields but not of nulls where it
// expects arrays: a dashboard spec with "tags": null is rejected while
// "tags": [] is accepted. This package answers the question "which fields of
// a document are array-typed?" from a declared schema table, so the publish
// path can rewrite nulls to empty arrays before transmission.
//
// Schemas are declared once per document type as an [Object] value — an
// explicit table rather than runtime reflection. The model is deliberately
// small: direct type tags, anyOf/oneOf unions (how optional fields appear in
// JSON Schema), and named references into a definitions table. Nesting is
// resolved one level deep, which is all the wire format ever needs.
package schema

// Kind is a schema type tag, following JSON Schema naming.
type Kind string

const (
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
)

// Field describes the declared type of a single document field.
//
// Exactly one of Type, Ref, AnyOf, or OneOf is normally populated. An
// optional field is expressed as a union with a null branch, e.g.
//
//	schema.Field{AnyOf: []schema.Field{{Type: schema.KindArray}, {Type: schema.KindNull}}}
//
// A zero Field (no type information) is treated as neither array nor object.
type Field struct {
	Type  Kind
	Ref   string
	AnyOf []Field
	OneOf []Field
}

// Object is the declared schema of a document type: its top-level fields plus
// a definitions table for named sub-schemas referenced via [Field.Ref].
type Object struct {
	Properties map[string]Field
	Defs       map[string]Object
}

// IsArray reports whether the field's declared type is an array, either
// directly or through any branch of a union.
func (f Field) IsArray() bool {
	if f.Type == KindArray {
		return true
	}
	for _, b := range f.AnyOf {
		if b.Type == KindArray {
			return true
		}
	}
	for _, b := range f.OneOf {
		if b.Type == KindArray {
			return true
		}
	}
	return false
}

// IsObject reports whether the field's declared type is an object: a direct
// object tag, a reference to a named sub-schema, or a union with at least one
// branch satisfying either condition.
func (f Field) IsObject() bool {
	if f.Type == KindObject || f.Ref != "" {
		return true
	}
	for _, b := range f.AnyOf {
		if b.Type == KindObject || b.Ref != "" {
			return true
		}
	}
	for _, b := range f.OneOf {
		if b.Type == KindObject || b.Ref != "" {
			return true
		}
	}
	return false
}

// ref returns the field's named sub-schema reference, looking through union
// branches. Empty string if the field carries no reference.
func (f Field) ref() string {
	if f.Ref != "" {
		return f.Ref
	}
	for _, b := range f.AnyOf {
		if b.Ref != "" {
			return b.Ref
		}
	}
	for _, b := range f.OneOf {
		if b.Ref != "" {
			return b.Ref
		}
	}
	return ""
}

// ArrayFields returns the names of all top-level fields whose declared type
// is an array. Order is unspecified.
func (o Object) ArrayFields() []string {
	var fields []string
	for name, f := range o.Properties {
		if f.IsArray() {
			fields = append(fields, name)
		}
	}
	return fields
}

// NestedArrayFields maps object-typed field names to the array-typed field
// names of their resolved sub-schema, one level deep.
//
// Only fields whose sub-schema is statically known are included: the field
// must carry a resolvable reference into the definitions table and the
// referenced schema must itself declare at least one array field. References
// that cannot be resolved are skipped silently.
func (o Object) NestedArrayFields() map[string][]string {
	nested := make(map[string][]string)
	for name, f := range o.Properties {
		if !f.IsObject() {
			continue
		}
		ref := f.ref()
		if ref == "" {
			continue
		}
		sub, ok := o.Defs[ref]
		if !ok {
			continue
		}
		var arrays []string
		for subName, subField := range sub.Properties {
			if subField.IsArray() {
				arrays = append(arrays, subName)
			}
		}
		if len(arrays) > 0 {
			nested[name] = arrays
		}
	}
	return nested
}

// ApplyDefaults returns a copy of data with null array values rewritten to
// empty arrays, at the top level and one nested level, as determined by the
// schema. The input map is never mutated; nested objects are copied before
// correction.
//
// Rules, in order:
//  1. Every array-typed field present with a nil value becomes []any{}.
//  2. Every object-typed field with known nested array fields: a nil value
//     becomes a fresh object holding an empty array per known sub-field; a
//     present object gets each known sub-field set to an empty array when nil
//     or absent.
func ApplyDefaults(data map[string]any, o Object) map[string]any {
	result := make(map[string]any, len(data))
	for k, v := range data {
		result[k] = v
	}

	for _, field := range o.ArrayFields() {
		if v, ok := result[field]; ok && v == nil {
			result[field] = []any{}
		}
	}

	for parent, subFields := range o.NestedArrayFields() {
		v, ok := result[parent]
		if !ok {
			continue
		}
		if v == nil {
			obj := make(map[string]any, len(subFields))
			for _, sub := range subFields {
				obj[sub] = []any{}
			}
			result[parent] = obj
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		patched := make(map[string]any, len(obj))
		for k, val := range obj {
			patched[k] = val
		}
		for _, sub := range subFields {
			if val, present := patched[sub]; !present || val == nil {
				patched[sub] = []any{}
			}
		}
		result[parent] = patched
	}

	return result
}
