package grafanarama

import (
	json "github.com/goccy/go-json"
)

// Dashboard is the canonical in-memory form of a dashboard document: a
// [Spec] (the visible content, always present), a [Metadata] envelope, and a
// server-reported [Status]. Only the Spec is ever transmitted; use
// [Dashboard.PublishedSpec] for the wire form and [Dashboard.Envelope] for
// the full local representation.
//
// Construct a Dashboard from typed options with [NewDashboard], or from a
// field-value mapping with [FromFields]. Both accept the same merge
// semantics: keys other than "spec", "metadata", and "status" are treated as
// direct Spec fields, and win over same-named fields inside an explicit
// "spec" value.
//
// A Dashboard is owned by a single caller. It is not safe for concurrent
// mutation.
type Dashboard struct {
	spec     Spec
	metadata *Metadata
	status   Status

	// rawMetadata holds the caller's metadata mapping when it could not be
	// resolved into a Metadata during construction. The error is deferred:
	// the merge always succeeds, and the failure resurfaces from
	// [Dashboard.Validate].
	rawMetadata map[string]any
}

// FromFields constructs a [Dashboard] from an arbitrary field-value mapping.
//
// The mapping may contain a "spec" key (a nested mapping or a built [Spec]),
// a "metadata" key (mapping or [Metadata]), a "status" key (mapping or
// [Status]), and any number of other keys treated as direct Spec fields.
//
// Merge rules:
//   - all non-envelope keys form the provisional spec content;
//   - schemaVersion is injected ([DefaultSchemaVersion]) when the provisional
//     content lacks it;
//   - an explicit "spec" value is merged underneath, so direct fields win on
//     key collision;
//   - absent metadata/status default to empty values; a metadata mapping
//     that fails construction is kept raw and deferred to [Dashboard.Validate].
//
// Returns a [FieldError] when a spec field value cannot be coerced to its
// declared type.
func FromFields(fields map[string]any) (*Dashboard, error) {
	content := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "spec", "metadata", "status":
		default:
			content[k] = v
		}
	}

	if _, ok := content["schemaVersion"]; !ok {
		content["schemaVersion"] = DefaultSchemaVersion
	}

	if specValue, ok := fields["spec"]; ok {
		for k, v := range specContentOf(specValue) {
			if _, exists := content[k]; !exists {
				content[k] = v
			}
		}
	}

	spec, err := newSpec(content)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{spec: spec}

	switch mv := fields["metadata"].(type) {
	case nil:
		d.metadata = &Metadata{}
	case Metadata:
		m := mv
		d.metadata = &m
	case *Metadata:
		d.metadata = mv
	case map[string]any:
		if len(mv) == 0 {
			d.metadata = &Metadata{}
			break
		}
		if m, err := newMetadata(mv); err == nil {
			d.metadata = &m
		} else {
			d.rawMetadata = mv
		}
	default:
		return nil, fieldErrorf("metadata", "expected metadata or object, got %T", mv)
	}

	switch sv := fields["status"].(type) {
	case nil:
		d.status = Status{}
	case Status:
		d.status = sv
	case *Status:
		d.status = *sv
	case map[string]any:
		st, err := newStatus(sv)
		if err != nil {
			return nil, err
		}
		d.status = st
	default:
		return nil, fieldErrorf("status", "expected status or object, got %T", sv)
	}

	return d, nil
}

// specContentOf extracts the mergeable field mapping from an explicit "spec"
// value. A built Spec contributes only its explicitly set fields; anything
// unrecognized contributes nothing.
func specContentOf(v any) map[string]any {
	switch s := v.(type) {
	case map[string]any:
		return s
	case Spec:
		return s.ExplicitFields()
	case *Spec:
		return s.ExplicitFields()
	}
	return nil
}

// From constructs a [Dashboard] from an arbitrary value. A field mapping is
// handled by [FromFields]; an existing *Dashboard passes through unchanged,
// making repeated construction idempotent.
func From(v any) (*Dashboard, error) {
	switch in := v.(type) {
	case *Dashboard:
		return in, nil
	case map[string]any:
		return FromFields(in)
	}
	return nil, fieldErrorf("dashboard", "expected field mapping or dashboard, got %T", v)
}

// ParseDashboard decodes a JSON document into a [Dashboard]. The JSON may be
// either a flat server-shaped spec payload or a full envelope with "spec",
// "metadata", and "status" keys; both go through the same merge.
func ParseDashboard(data []byte) (*Dashboard, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return FromFields(fields)
}

// Spec returns the dashboard's spec for reading and field-level mutation.
func (d *Dashboard) Spec() *Spec {
	return &d.spec
}

// Metadata returns the resolved metadata. ok is false when construction was
// deferred because the supplied metadata mapping was invalid; call
// [Dashboard.Validate] for the underlying error.
func (d *Dashboard) Metadata() (Metadata, bool) {
	if d.rawMetadata != nil || d.metadata == nil {
		return Metadata{}, false
	}
	return *d.metadata, true
}

// Status returns the dashboard's status envelope.
func (d *Dashboard) Status() Status {
	return d.status
}

// Validate checks the whole document, resolving any metadata whose
// construction was deferred during the merge. On success the resolved
// metadata replaces the raw mapping.
func (d *Dashboard) Validate() error {
	if d.rawMetadata == nil {
		return nil
	}
	m, err := newMetadata(d.rawMetadata)
	if err != nil {
		return err
	}
	d.metadata = &m
	d.rawMetadata = nil
	return nil
}

// PublishedSpec is the externally visible form of a dashboard: the spec's
// fields flattened to the document root, with the server's defaulting rules
// already applied. It contains no null where the server expects an array and
// always carries time, timepicker, version, and weekStart. Metadata and
// Status never appear in it.
type PublishedSpec map[string]any

// PublishedSpec converts the dashboard into its wire form. The conversion is
// performed fresh on every call; mutating the returned mapping does not
// affect the dashboard.
func (d *Dashboard) PublishedSpec() PublishedSpec {
	return PublishedSpec(normalizeSpecFields(d.spec.Fields()))
}

// MarshalJSON serializes the dashboard as its [PublishedSpec]: exactly the
// spec content, normalized, with the metadata/status envelope hidden.
func (d *Dashboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.PublishedSpec())
}

// Envelope returns the full local representation of the document, including
// the metadata and status that are hidden from the published form. Raw
// unresolved metadata is included as supplied.
func (d *Dashboard) Envelope() map[string]any {
	var metadata any
	switch {
	case d.rawMetadata != nil:
		metadata = d.rawMetadata
	case d.metadata != nil:
		metadata = d.metadata.Fields()
	}
	return map[string]any{
		"metadata": metadata,
		"spec":     d.spec.Fields(),
		"status":   d.status.Fields(),
	}
}
