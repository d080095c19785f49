package grafanarama

import (
	"github.com/esalituro/grafanarama/schema"
)

// defaultTimeFrom and defaultTimeTo are the time window the server expects
// when a dashboard does not set one.
const (
	defaultTimeFrom = "now-6h"
	defaultTimeTo   = "now"
)

// normalizeSpecFields rewrites a spec field mapping into the form the server
// accepts. Schema-driven corrections come first (null arrays to empty arrays,
// at the top level and one nested level), then five fixed corrections the
// wire format hardcodes regardless of declared optionality:
//
//  1. time defaults to {from: "now-6h", to: "now"} when absent or null;
//  2. a "from_" key inside the time object is renamed to "from";
//  3. timepicker defaults to {} when absent or null;
//  4. version defaults to 1 when absent or null;
//  5. weekStart defaults to "" when absent or null.
//
// The input mapping is not mutated.
func normalizeSpecFields(fields map[string]any) map[string]any {
	out := schema.ApplyDefaults(fields, specSchema)

	if v, ok := out["time"]; !ok || v == nil {
		out["time"] = map[string]any{"from": defaultTimeFrom, "to": defaultTimeTo}
	}
	if tm, ok := out["time"].(map[string]any); ok {
		if from, aliased := tm["from_"]; aliased {
			fixed := make(map[string]any, len(tm))
			for k, v := range tm {
				if k != "from_" {
					fixed[k] = v
				}
			}
			fixed["from"] = from
			out["time"] = fixed
		}
	}
	if v, ok := out["timepicker"]; !ok || v == nil {
		out["timepicker"] = map[string]any{}
	}
	if v, ok := out["version"]; !ok || v == nil {
		out["version"] = 1
	}
	if v, ok := out["weekStart"]; !ok || v == nil {
		out["weekStart"] = ""
	}

	return out
}
