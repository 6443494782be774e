package conventions

import (
	"fmt"
	"strconv"

	"github.com/zjrosen/roster/internal/loader"
)

// TagValue carries a setting on a data source field: `value:"postgres"`.
const TagValue = "value"

// DataSourceSettings is the connection configuration declared by a data
// source type.
type DataSourceSettings struct {
	Driver   string
	URL      string
	Username string
	Password string
	Pooled   bool
	DDL      string // schema action, e.g. "create-drop" or "update"
}

// DataSource is the connection configuration artifact.
type DataSource struct {
	artifact
	settings DataSourceSettings
}

// NewDataSource builds the data source facade for t. Settings are read from
// the value tags of the Driver, URL, Username, Password, Pooled and DDL
// fields; Pooled defaults to true.
func NewDataSource(t *loader.Type) (*DataSource, error) {
	ds := &DataSource{
		artifact: newArtifact(t, SuffixDataSource),
		settings: DataSourceSettings{Pooled: true},
	}
	s := &ds.settings
	for name, dst := range map[string]*string{
		"Driver":   &s.Driver,
		"URL":      &s.URL,
		"Username": &s.Username,
		"Password": &s.Password,
		"DDL":      &s.DDL,
	} {
		if v, ok := settingValue(t, name); ok {
			*dst = v
		}
	}
	if v, ok := settingValue(t, "Pooled"); ok {
		pooled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: Pooled on %s: %w", ErrInvalidSetting, t.QualifiedName(), err)
		}
		s.Pooled = pooled
	}

	if ds.available && s.Driver == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingDriver, t.QualifiedName())
	}
	return ds, nil
}

func settingValue(t *loader.Type, field string) (string, bool) {
	f, ok := t.Field(field)
	if !ok {
		return "", false
	}
	return f.Tag.Lookup(TagValue)
}

// Settings returns the declared connection settings.
func (d *DataSource) Settings() DataSourceSettings { return d.settings }
