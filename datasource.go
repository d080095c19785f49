package grafanarama

import "errors"

// Datasource describes a Grafana datasource for the upsert path of
// [Client.SendDatasource]. Name is the upsert key and the only required
// field; everything else is passed through to the server as-is.
type Datasource struct {
	Name      string
	Type      string
	URL       string
	Access    string
	Database  string
	User      string
	IsDefault bool
	JSONData  map[string]any
}

// Fields returns the datasource's wire representation.
func (d Datasource) Fields() map[string]any {
	m := map[string]any{
		"name":      d.Name,
		"type":      d.Type,
		"access":    d.Access,
		"isDefault": d.IsDefault,
	}
	if d.URL != "" {
		m["url"] = d.URL
	}
	if d.Database != "" {
		m["database"] = d.Database
	}
	if d.User != "" {
		m["user"] = d.User
	}
	if d.JSONData != nil {
		m["jsonData"] = d.JSONData
	}
	return m
}

// validate checks the fields required by the upsert path.
func (d Datasource) validate() error {
	if d.Name == "" {
		return errors.New("datasource must have a name")
	}
	return nil
}
