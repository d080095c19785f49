package grafanarama

import (
	"github.com/esalituro/grafanarama/schema"
)

// DefaultSchemaVersion is the dashboard schema version injected when a
// document is constructed without one. Version 39 corresponds to recent
// Grafana releases (10.x/11.x).
const DefaultSchemaVersion = 39

// GridColumns is the width of the dashboard layout grid. Panel positions and
// widths are expressed in these columns.
const GridColumns = 24

// TimeRange is the dashboard's default time window, expressed in Grafana's
// relative time syntax (e.g. "now-6h" to "now").
type TimeRange struct {
	From string
	To   string
}

// fields returns the wire representation of the time range.
func (t TimeRange) fields() map[string]any {
	return map[string]any{"from": t.From, "to": t.To}
}

// DataSourceRef identifies a datasource by type and UID, as embedded in
// panels and annotation queries.
type DataSourceRef struct {
	Type string
	UID  string
}

// fields returns the wire representation of the reference.
func (r DataSourceRef) fields() map[string]any {
	return map[string]any{"type": r.Type, "uid": r.UID}
}

// Templating holds the dashboard's template variable list. The wire format
// wraps the list in an object: {"list": [...]}.
type Templating struct {
	List []any
}

func (t Templating) fields() map[string]any {
	list := t.List
	if list == nil {
		list = []any{}
	}
	return map[string]any{"list": list}
}

// AnnotationContainer holds the dashboard's annotation queries, wrapped the
// same way as [Templating]: {"list": [...]}.
type AnnotationContainer struct {
	List []any
}

func (a AnnotationContainer) fields() map[string]any {
	list := a.List
	if list == nil {
		list = []any{}
	}
	return map[string]any{"list": list}
}

// AnnotationQuery describes one annotation source. Use [AnnotationQuery.Fields]
// to append it to an [AnnotationContainer] list.
type AnnotationQuery struct {
	Name       string
	Datasource *DataSourceRef
	Enable     bool
	Hide       bool
	IconColor  string
	Type       string
	BuiltIn    int
}

// Fields returns the wire representation of the annotation query.
func (q AnnotationQuery) Fields() map[string]any {
	m := map[string]any{
		"name":      q.Name,
		"enable":    q.Enable,
		"hide":      q.Hide,
		"iconColor": q.IconColor,
	}
	if q.Datasource != nil {
		m["datasource"] = q.Datasource.fields()
	}
	if q.Type != "" {
		m["type"] = q.Type
	}
	if q.BuiltIn != 0 {
		m["builtIn"] = q.BuiltIn
	}
	return m
}

// GridPos is a panel's position and size in the 24-column dashboard grid.
type GridPos struct {
	X int
	Y int
	W int
	H int
}

func (g GridPos) fields() map[string]any {
	return map[string]any{"x": g.X, "y": g.Y, "w": g.W, "h": g.H}
}

// Panel is one visual tile in the dashboard layout.
//
// Type is the panel type discriminator ("text", "graph", "timeseries", ...).
// Options carries the type-dependent configuration verbatim; its shape is
// defined by the panel plugin, not by this library.
type Panel struct {
	Type       string
	ID         int
	Title      string
	GridPos    GridPos
	Datasource *DataSourceRef
	Options    map[string]any
}

// Fields returns the wire representation of the panel.
func (p Panel) Fields() map[string]any {
	m := map[string]any{
		"type":    p.Type,
		"id":      p.ID,
		"title":   p.Title,
		"gridPos": p.GridPos.fields(),
	}
	if p.Datasource != nil {
		m["datasource"] = p.Datasource.fields()
	}
	if p.Options != nil {
		m["options"] = p.Options
	}
	return m
}

// Spec is the visible configuration content of a dashboard: title, panels,
// time range, templating, and the long tail of display preferences. It is the
// only part of a [Dashboard] that is transmitted to the server.
//
// A Spec tracks which fields were explicitly set, so a document re-parsed
// from a server payload round-trips only the fields that payload carried.
// Fields are accessed via getters and mutated via [Spec.Set], keeping the
// explicit-set bookkeeping consistent.
type Spec struct {
	id                   *int64
	uid                  *string
	title                *string
	description          *string
	revision             *int64
	gnetID               *string
	tags                 []string
	timezone             string
	editable             bool
	graphTooltip         int
	time                 *TimeRange
	timepicker           map[string]any
	fiscalYearStartMonth int
	liveNow              *bool
	weekStart            *string
	refresh              *string
	schemaVersion        int
	version              *int64
	panels               []Panel
	templating           *Templating
	annotations          *AnnotationContainer
	links                []any
	snapshot             map[string]any

	explicit map[string]struct{}
}

// specSchema is the declared field schema of [Spec], written once by hand
// instead of derived through reflection. Optional fields appear as unions
// with a null branch, matching how they would look in JSON Schema. The
// normalizer consults this table to find sequence-typed fields.
var specSchema = schema.Object{
	Properties: map[string]schema.Field{
		"id":                   optional(schema.KindInteger),
		"uid":                  optional(schema.KindString),
		"title":                optional(schema.KindString),
		"description":          optional(schema.KindString),
		"revision":             optional(schema.KindInteger),
		"gnetId":               optional(schema.KindString),
		"tags":                 optional(schema.KindArray),
		"timezone":             {Type: schema.KindString},
		"editable":             {Type: schema.KindBoolean},
		"graphTooltip":         {Type: schema.KindInteger},
		"time":                 optionalRef("TimeRange"),
		"timepicker":           optional(schema.KindObject),
		"fiscalYearStartMonth": {Type: schema.KindInteger},
		"liveNow":              optional(schema.KindBoolean),
		"weekStart":            optional(schema.KindString),
		"refresh":              optional(schema.KindString),
		"schemaVersion":        {Type: schema.KindInteger},
		"version":              optional(schema.KindInteger),
		"panels":               optional(schema.KindArray),
		"templating":           optionalRef("Templating"),
		"annotations":          optionalRef("AnnotationContainer"),
		"links":                optional(schema.KindArray),
		"snapshot":             optional(schema.KindObject),
	},
	Defs: map[string]schema.Object{
		"TimeRange": {
			Properties: map[string]schema.Field{
				"from": {Type: schema.KindString},
				"to":   {Type: schema.KindString},
			},
		},
		"Templating": {
			Properties: map[string]schema.Field{
				"list": {Type: schema.KindArray},
			},
		},
		"AnnotationContainer": {
			Properties: map[string]schema.Field{
				"list": {Type: schema.KindArray},
			},
		},
	},
}

// optional declares a field whose type is a union of kind and null.
func optional(kind schema.Kind) schema.Field {
	return schema.Field{AnyOf: []schema.Field{{Type: kind}, {Type: schema.KindNull}}}
}

// optionalRef declares a field whose type is a union of a named sub-schema
// and null.
func optionalRef(ref string) schema.Field {
	return schema.Field{AnyOf: []schema.Field{{Ref: ref}, {Type: schema.KindNull}}}
}

// newSpec builds a Spec from a field-value mapping, applying per-field type
// coercion. Values may be typed ([]Panel, TimeRange, ...) or plain decoded
// JSON (maps, slices, float64 numbers). Unknown keys are ignored, matching
// the server's tolerance for fields this model does not track.
func newSpec(fields map[string]any) (Spec, error) {
	s := Spec{
		timezone: "browser",
		editable: true,
		explicit: make(map[string]struct{}, len(fields)),
	}
	for name, value := range fields {
		if err := s.Set(name, value); err != nil {
			return Spec{}, err
		}
	}
	return s, nil
}

// Set assigns a single field by wire name, coercing the value to the field's
// declared type. A nil value clears an optional field (and still counts as
// explicitly set); nil for a required field is an error. Unknown names are
// ignored.
func (s *Spec) Set(name string, value any) error {
	if s.explicit == nil {
		s.explicit = make(map[string]struct{})
	}

	switch name {
	case "id":
		return setOptInt64(s, name, value, &s.id)
	case "uid":
		return setOptString(s, name, value, &s.uid)
	case "title":
		return setOptString(s, name, value, &s.title)
	case "description":
		return setOptString(s, name, value, &s.description)
	case "revision":
		return setOptInt64(s, name, value, &s.revision)
	case "gnetId":
		return setOptString(s, name, value, &s.gnetID)
	case "tags":
		if value == nil {
			s.tags = nil
			s.markSet(name)
			return nil
		}
		tags, ok := toStringSlice(value)
		if !ok {
			return fieldErrorf(name, "expected list of strings, got %T", value)
		}
		s.tags = tags
		s.markSet(name)
		return nil
	case "timezone":
		v, ok := value.(string)
		if !ok {
			return fieldErrorf(name, "expected string, got %T", value)
		}
		s.timezone = v
		s.markSet(name)
		return nil
	case "editable":
		v, ok := value.(bool)
		if !ok {
			return fieldErrorf(name, "expected bool, got %T", value)
		}
		s.editable = v
		s.markSet(name)
		return nil
	case "graphTooltip":
		return setInt(s, name, value, &s.graphTooltip)
	case "time":
		if value == nil {
			s.time = nil
			s.markSet(name)
			return nil
		}
		tr, err := timeRangeFromValue(value)
		if err != nil {
			return err
		}
		s.time = &tr
		s.markSet(name)
		return nil
	case "timepicker":
		if value == nil {
			s.timepicker = nil
			s.markSet(name)
			return nil
		}
		m, ok := value.(map[string]any)
		if !ok {
			return fieldErrorf(name, "expected object, got %T", value)
		}
		s.timepicker = m
		s.markSet(name)
		return nil
	case "fiscalYearStartMonth":
		return setInt(s, name, value, &s.fiscalYearStartMonth)
	case "liveNow":
		if value == nil {
			s.liveNow = nil
			s.markSet(name)
			return nil
		}
		v, ok := value.(bool)
		if !ok {
			return fieldErrorf(name, "expected bool, got %T", value)
		}
		s.liveNow = &v
		s.markSet(name)
		return nil
	case "weekStart":
		return setOptString(s, name, value, &s.weekStart)
	case "refresh":
		return setOptString(s, name, value, &s.refresh)
	case "schemaVersion":
		return setInt(s, name, value, &s.schemaVersion)
	case "version":
		return setOptInt64(s, name, value, &s.version)
	case "panels":
		if value == nil {
			s.panels = nil
			s.markSet(name)
			return nil
		}
		panels, err := panelsFromValue(value)
		if err != nil {
			return err
		}
		s.panels = panels
		s.markSet(name)
		return nil
	case "templating":
		if value == nil {
			s.templating = nil
			s.markSet(name)
			return nil
		}
		t, err := templatingFromValue(value)
		if err != nil {
			return err
		}
		s.templating = &t
		s.markSet(name)
		return nil
	case "annotations":
		if value == nil {
			s.annotations = nil
			s.markSet(name)
			return nil
		}
		a, err := annotationsFromValue(value)
		if err != nil {
			return err
		}
		s.annotations = &a
		s.markSet(name)
		return nil
	case "links":
		if value == nil {
			s.links = nil
			s.markSet(name)
			return nil
		}
		list, ok := toAnySlice(value)
		if !ok {
			return fieldErrorf(name, "expected list, got %T", value)
		}
		s.links = list
		s.markSet(name)
		return nil
	case "snapshot":
		if value == nil {
			s.snapshot = nil
			s.markSet(name)
			return nil
		}
		m, ok := value.(map[string]any)
		if !ok {
			return fieldErrorf(name, "expected object, got %T", value)
		}
		s.snapshot = m
		s.markSet(name)
		return nil
	}

	// unknown field, ignored
	return nil
}

func (s *Spec) markSet(name string) {
	s.explicit[name] = struct{}{}
}

// SchemaVersion returns the dashboard schema version.
func (s *Spec) SchemaVersion() int { return s.schemaVersion }

// Title returns the dashboard title, or "" if unset.
func (s *Spec) Title() string { return derefString(s.title) }

// UID returns the dashboard UID, or "" if unset.
func (s *Spec) UID() string { return derefString(s.uid) }

// Description returns the dashboard description, or "" if unset.
func (s *Spec) Description() string { return derefString(s.description) }

// Tags returns the dashboard tags. Nil if unset.
func (s *Spec) Tags() []string { return s.tags }

// Timezone returns the dashboard timezone. Defaults to "browser".
func (s *Spec) Timezone() string { return s.timezone }

// Editable reports whether the dashboard is editable. Defaults to true.
func (s *Spec) Editable() bool { return s.editable }

// Time returns the dashboard time range, or nil if unset.
func (s *Spec) Time() *TimeRange { return s.time }

// Panels returns the dashboard's panels. Nil if unset.
func (s *Spec) Panels() []Panel { return s.panels }

// Templating returns the template variable container, or nil if unset.
func (s *Spec) Templating() *Templating { return s.templating }

// Annotations returns the annotation container, or nil if unset.
func (s *Spec) Annotations() *AnnotationContainer { return s.annotations }

// Fields returns the spec's complete field-value mapping, including fields
// that were never set (as nil, or their declared default for the handful of
// non-optional fields). The result is freshly built on every call; values
// are plain maps, slices, and scalars suitable for JSON encoding.
func (s *Spec) Fields() map[string]any {
	m := map[string]any{
		"id":                   optInt64Value(s.id),
		"uid":                  optStringValue(s.uid),
		"title":                optStringValue(s.title),
		"description":          optStringValue(s.description),
		"revision":             optInt64Value(s.revision),
		"gnetId":               optStringValue(s.gnetID),
		"tags":                 nil,
		"timezone":             s.timezone,
		"editable":             s.editable,
		"graphTooltip":         s.graphTooltip,
		"time":                 nil,
		"timepicker":           nil,
		"fiscalYearStartMonth": s.fiscalYearStartMonth,
		"liveNow":              optBoolValue(s.liveNow),
		"weekStart":            optStringValue(s.weekStart),
		"refresh":              optStringValue(s.refresh),
		"schemaVersion":        s.schemaVersion,
		"version":              optInt64Value(s.version),
		"panels":               nil,
		"templating":           nil,
		"annotations":          nil,
		"links":                nil,
		"snapshot":             nil,
	}
	if s.tags != nil {
		m["tags"] = stringsToAny(s.tags)
	}
	if s.time != nil {
		m["time"] = s.time.fields()
	}
	if s.timepicker != nil {
		m["timepicker"] = s.timepicker
	}
	if s.panels != nil {
		list := make([]any, len(s.panels))
		for i, p := range s.panels {
			list[i] = p.Fields()
		}
		m["panels"] = list
	}
	if s.templating != nil {
		m["templating"] = s.templating.fields()
	}
	if s.annotations != nil {
		m["annotations"] = s.annotations.fields()
	}
	if s.links != nil {
		m["links"] = s.links
	}
	if s.snapshot != nil {
		m["snapshot"] = s.snapshot
	}
	return m
}

// ExplicitFields returns only the fields that were explicitly set, in their
// wire representation. This is the mapping merged when a built Spec is passed
// under the "spec" key during document construction.
func (s *Spec) ExplicitFields() map[string]any {
	all := s.Fields()
	m := make(map[string]any, len(s.explicit))
	for name := range s.explicit {
		if v, ok := all[name]; ok {
			m[name] = v
		}
	}
	return m
}

// value coercion helpers

func setOptString(s *Spec, name string, value any, dst **string) error {
	if value == nil {
		*dst = nil
		s.markSet(name)
		return nil
	}
	v, ok := value.(string)
	if !ok {
		return fieldErrorf(name, "expected string, got %T", value)
	}
	*dst = &v
	s.markSet(name)
	return nil
}

func setOptInt64(s *Spec, name string, value any, dst **int64) error {
	if value == nil {
		*dst = nil
		s.markSet(name)
		return nil
	}
	v, ok := toInt64(value)
	if !ok {
		return fieldErrorf(name, "expected integer, got %T", value)
	}
	*dst = &v
	s.markSet(name)
	return nil
}

func setInt(s *Spec, name string, value any, dst *int) error {
	v, ok := toInt64(value)
	if !ok {
		return fieldErrorf(name, "expected integer, got %T", value)
	}
	*dst = int(v)
	s.markSet(name)
	return nil
}

// toInt64 converts the integer representations produced by Go literals and
// JSON/YAML decoding. Non-integral floats are rejected.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toStringSlice(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func toAnySlice(v any) ([]any, bool) {
	list, ok := v.([]any)
	return list, ok
}

func stringsToAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optStringValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optInt64Value(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optBoolValue(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

// timeRangeFromValue accepts a TimeRange value or its wire map. The map form
// also accepts "from_" as an alias for "from".
func timeRangeFromValue(v any) (TimeRange, error) {
	switch t := v.(type) {
	case TimeRange:
		return t, nil
	case *TimeRange:
		return *t, nil
	case map[string]any:
		var tr TimeRange
		if from, ok := t["from"].(string); ok {
			tr.From = from
		} else if from, ok := t["from_"].(string); ok {
			tr.From = from
		}
		if to, ok := t["to"].(string); ok {
			tr.To = to
		}
		return tr, nil
	}
	return TimeRange{}, fieldErrorf("time", "expected time range, got %T", v)
}

func templatingFromValue(v any) (Templating, error) {
	switch t := v.(type) {
	case Templating:
		return t, nil
	case *Templating:
		return *t, nil
	case map[string]any:
		var tpl Templating
		if raw, ok := t["list"]; ok && raw != nil {
			list, ok := toAnySlice(raw)
			if !ok {
				return Templating{}, fieldErrorf("templating.list", "expected list, got %T", raw)
			}
			tpl.List = list
		}
		return tpl, nil
	}
	return Templating{}, fieldErrorf("templating", "expected templating container, got %T", v)
}

func annotationsFromValue(v any) (AnnotationContainer, error) {
	switch a := v.(type) {
	case AnnotationContainer:
		return a, nil
	case *AnnotationContainer:
		return *a, nil
	case map[string]any:
		var ac AnnotationContainer
		if raw, ok := a["list"]; ok && raw != nil {
			list, ok := toAnySlice(raw)
			if !ok {
				return AnnotationContainer{}, fieldErrorf("annotations.list", "expected list, got %T", raw)
			}
			ac.List = list
		}
		return ac, nil
	}
	return AnnotationContainer{}, fieldErrorf("annotations", "expected annotation container, got %T", v)
}

// panelsFromValue accepts []Panel or a decoded JSON list of panel maps.
func panelsFromValue(v any) ([]Panel, error) {
	switch list := v.(type) {
	case []Panel:
		return list, nil
	case []any:
		panels := make([]Panel, len(list))
		for i, item := range list {
			p, err := panelFromValue(item)
			if err != nil {
				return nil, err
			}
			panels[i] = p
		}
		return panels, nil
	}
	return nil, fieldErrorf("panels", "expected list of panels, got %T", v)
}

func panelFromValue(v any) (Panel, error) {
	switch p := v.(type) {
	case Panel:
		return p, nil
	case *Panel:
		return *p, nil
	case map[string]any:
		var panel Panel
		if t, ok := p["type"].(string); ok {
			panel.Type = t
		}
		if id, ok := toInt64(p["id"]); ok {
			panel.ID = int(id)
		}
		if title, ok := p["title"].(string); ok {
			panel.Title = title
		}
		if gp, ok := p["gridPos"].(map[string]any); ok {
			if x, ok := toInt64(gp["x"]); ok {
				panel.GridPos.X = int(x)
			}
			if y, ok := toInt64(gp["y"]); ok {
				panel.GridPos.Y = int(y)
			}
			if w, ok := toInt64(gp["w"]); ok {
				panel.GridPos.W = int(w)
			}
			if h, ok := toInt64(gp["h"]); ok {
				panel.GridPos.H = int(h)
			}
		}
		if ds, ok := p["datasource"].(map[string]any); ok {
			ref := DataSourceRef{}
			if t, ok := ds["type"].(string); ok {
				ref.Type = t
			}
			if uid, ok := ds["uid"].(string); ok {
				ref.UID = uid
			}
			panel.Datasource = &ref
		}
		if opts, ok := p["options"].(map[string]any); ok {
			panel.Options = opts
		}
		return panel, nil
	}
	return Panel{}, fieldErrorf("panels", "expected panel, got %T", v)
}
