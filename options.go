package grafanarama

// DashboardOption configures a [Dashboard] during construction with
// [NewDashboard].
//
// Options write into the same field-value mapping that [FromFields] accepts,
// so typed options and raw fields compose freely and follow the same merge
// rules. Options are applied in order; a later option overwrites an earlier
// one for the same field.
type DashboardOption func(fields map[string]any) error

// NewDashboard creates a [Dashboard] from the given options.
//
// A dashboard built with no options is valid: it carries an empty spec with
// schemaVersion defaulted to [DefaultSchemaVersion].
//
// Example:
//
//	d, err := grafanarama.NewDashboard(
//	    grafanarama.WithTitle("Service Overview"),
//	    grafanarama.WithUID(grafanarama.NewUID()),
//	    grafanarama.WithPanels(panels...),
//	)
func NewDashboard(opts ...DashboardOption) (*Dashboard, error) {
	fields := make(map[string]any)
	for _, opt := range opts {
		if err := opt(fields); err != nil {
			return nil, err
		}
	}
	return FromFields(fields)
}

// WithTitle sets the dashboard title.
func WithTitle(title string) DashboardOption {
	return func(fields map[string]any) error {
		fields["title"] = title
		return nil
	}
}

// WithUID sets the dashboard UID. Use [NewUID] to generate one; the server
// assigns a UID if none is supplied.
func WithUID(uid string) DashboardOption {
	return func(fields map[string]any) error {
		fields["uid"] = uid
		return nil
	}
}

// WithDescription sets the dashboard description.
func WithDescription(description string) DashboardOption {
	return func(fields map[string]any) error {
		fields["description"] = description
		return nil
	}
}

// WithTags sets the dashboard tags.
func WithTags(tags ...string) DashboardOption {
	return func(fields map[string]any) error {
		fields["tags"] = tags
		return nil
	}
}

// WithSchemaVersion overrides the default schema version.
func WithSchemaVersion(version int) DashboardOption {
	return func(fields map[string]any) error {
		fields["schemaVersion"] = version
		return nil
	}
}

// WithTimeRange sets the dashboard's default time window.
func WithTimeRange(tr TimeRange) DashboardOption {
	return func(fields map[string]any) error {
		fields["time"] = tr
		return nil
	}
}

// WithRefresh sets the auto-refresh interval, e.g. "30s" or "5m".
func WithRefresh(refresh string) DashboardOption {
	return func(fields map[string]any) error {
		fields["refresh"] = refresh
		return nil
	}
}

// WithTimezone sets the dashboard timezone. Defaults to "browser".
func WithTimezone(tz string) DashboardOption {
	return func(fields map[string]any) error {
		fields["timezone"] = tz
		return nil
	}
}

// WithEditable sets whether the dashboard is editable in the UI.
func WithEditable(editable bool) DashboardOption {
	return func(fields map[string]any) error {
		fields["editable"] = editable
		return nil
	}
}

// WithPanel appends a single panel to the dashboard.
func WithPanel(p Panel) DashboardOption {
	return func(fields map[string]any) error {
		existing, _ := fields["panels"].([]Panel)
		fields["panels"] = append(existing, p)
		return nil
	}
}

// WithPanels appends multiple panels to the dashboard.
func WithPanels(panels ...Panel) DashboardOption {
	return func(fields map[string]any) error {
		existing, _ := fields["panels"].([]Panel)
		fields["panels"] = append(existing, panels...)
		return nil
	}
}

// WithTemplating sets the template variable container.
func WithTemplating(t Templating) DashboardOption {
	return func(fields map[string]any) error {
		fields["templating"] = t
		return nil
	}
}

// WithAnnotations sets the annotation container.
func WithAnnotations(a AnnotationContainer) DashboardOption {
	return func(fields map[string]any) error {
		fields["annotations"] = a
		return nil
	}
}

// WithSpec supplies a built [Spec] to merge underneath any direct field
// options, which win on key collision.
func WithSpec(s Spec) DashboardOption {
	return func(fields map[string]any) error {
		fields["spec"] = s
		return nil
	}
}

// WithMetadata attaches a metadata envelope to the document.
func WithMetadata(m Metadata) DashboardOption {
	return func(fields map[string]any) error {
		fields["metadata"] = m
		return nil
	}
}

// WithStatus attaches a status envelope to the document.
func WithStatus(s Status) DashboardOption {
	return func(fields map[string]any) error {
		fields["status"] = s
		return nil
	}
}

// WithField sets an arbitrary spec field by wire name. This is the escape
// hatch for fields without a dedicated option.
func WithField(name string, value any) DashboardOption {
	return func(fields map[string]any) error {
		fields[name] = value
		return nil
	}
}
