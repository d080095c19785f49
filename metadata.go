package grafanarama

import (
	"time"
)

// Metadata is the provenance envelope around a dashboard spec: identity,
// timestamps, and operator bookkeeping. It appears in local representations
// of a document but is never transmitted to the server.
type Metadata struct {
	UID               string
	CreationTimestamp time.Time
	UpdateTimestamp   time.Time
	DeletionTimestamp *time.Time
	ResourceVersion   string
	Labels            map[string]string
	Finalizers        []string
	CreatedBy         string
	UpdatedBy         string
	ExtraFields       map[string]any
}

// Fields returns the metadata's field-value mapping for local serialization.
func (m Metadata) Fields() map[string]any {
	out := map[string]any{
		"uid":               m.UID,
		"creationTimestamp": timestampValue(m.CreationTimestamp),
		"updateTimestamp":   timestampValue(m.UpdateTimestamp),
		"deletionTimestamp": nil,
		"resourceVersion":   m.ResourceVersion,
		"labels":            m.Labels,
		"finalizers":        m.Finalizers,
		"createdBy":         m.CreatedBy,
		"updatedBy":         m.UpdatedBy,
		"extraFields":       m.ExtraFields,
	}
	if m.DeletionTimestamp != nil {
		out["deletionTimestamp"] = m.DeletionTimestamp.Format(time.RFC3339)
	}
	return out
}

func timestampValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

// newMetadata builds a Metadata from a field-value mapping. Timestamps must
// be time.Time values or RFC 3339 strings; anything else is a [FieldError].
func newMetadata(fields map[string]any) (Metadata, error) {
	var m Metadata
	for name, value := range fields {
		if value == nil {
			continue
		}
		switch name {
		case "uid":
			v, ok := value.(string)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.uid", "expected string, got %T", value)
			}
			m.UID = v
		case "creationTimestamp":
			t, err := timestampFromValue("metadata.creationTimestamp", value)
			if err != nil {
				return Metadata{}, err
			}
			m.CreationTimestamp = t
		case "updateTimestamp":
			t, err := timestampFromValue("metadata.updateTimestamp", value)
			if err != nil {
				return Metadata{}, err
			}
			m.UpdateTimestamp = t
		case "deletionTimestamp":
			t, err := timestampFromValue("metadata.deletionTimestamp", value)
			if err != nil {
				return Metadata{}, err
			}
			m.DeletionTimestamp = &t
		case "resourceVersion":
			v, ok := value.(string)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.resourceVersion", "expected string, got %T", value)
			}
			m.ResourceVersion = v
		case "labels":
			labels, ok := toStringMap(value)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.labels", "expected string map, got %T", value)
			}
			m.Labels = labels
		case "finalizers":
			list, ok := toStringSlice(value)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.finalizers", "expected list of strings, got %T", value)
			}
			m.Finalizers = list
		case "createdBy":
			v, ok := value.(string)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.createdBy", "expected string, got %T", value)
			}
			m.CreatedBy = v
		case "updatedBy":
			v, ok := value.(string)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.updatedBy", "expected string, got %T", value)
			}
			m.UpdatedBy = v
		case "extraFields":
			v, ok := value.(map[string]any)
			if !ok {
				return Metadata{}, fieldErrorf("metadata.extraFields", "expected object, got %T", value)
			}
			m.ExtraFields = v
		default:
			return Metadata{}, fieldErrorf("metadata."+name, "unknown field")
		}
	}
	return m, nil
}

func timestampFromValue(field string, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fieldErrorf(field, "invalid timestamp %q", t)
		}
		return parsed, nil
	}
	return time.Time{}, fieldErrorf(field, "expected timestamp, got %T", v)
}

func toStringMap(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		return m, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, item := range m {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// Status is the server-reported operational state envelope of a dashboard.
// Like [Metadata] it is excluded from the transmitted payload.
type Status struct {
	OperatorStates   []any
	AdditionalFields map[string]any
}

// Fields returns the status's field-value mapping for local serialization.
func (s Status) Fields() map[string]any {
	return map[string]any{
		"operatorStates":   anyOrNil(s.OperatorStates),
		"additionalFields": mapOrNil(s.AdditionalFields),
	}
}

func anyOrNil(list []any) any {
	if list == nil {
		return nil
	}
	return list
}

func mapOrNil(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

// newStatus builds a Status from a field-value mapping.
func newStatus(fields map[string]any) (Status, error) {
	var s Status
	for name, value := range fields {
		if value == nil {
			continue
		}
		switch name {
		case "operatorStates":
			list, ok := toAnySlice(value)
			if !ok {
				return Status{}, fieldErrorf("status.operatorStates", "expected list, got %T", value)
			}
			s.OperatorStates = list
		case "additionalFields":
			m, ok := value.(map[string]any)
			if !ok {
				return Status{}, fieldErrorf("status.additionalFields", "expected object, got %T", value)
			}
			s.AdditionalFields = m
		default:
			return Status{}, fieldErrorf("status."+name, "unknown field")
		}
	}
	return s, nil
}
