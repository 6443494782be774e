package conventions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDomain_Properties(t *testing.T) {
	d, err := NewDomain(parseType(t, "package app\n\ntype Base struct{}\n\ntype Book struct {\n\tBase\n\tID      int64\n\tVersion int64\n\tTitle   string\n\tcache   []byte\n\tScore   float64 `roster:\"transient\"`\n}\n", "Book"))
	require.NoError(t, err)

	require.Equal(t, "Book", d.Name())
	require.Equal(t, "app.Book", d.FullName())
	require.True(t, d.Available())
	require.Equal(t, []Property{
		{Name: "ID", Type: "int64", Persistent: true},
		{Name: "Version", Type: "int64", Persistent: true},
		{Name: "Title", Type: "string", Persistent: true},
		{Name: "Score", Type: "float64", Persistent: false},
	}, d.Properties())
	require.Len(t, d.PersistentProperties(), 3)

	p, ok := d.Property("Score")
	require.True(t, ok)
	require.False(t, p.Persistent)
	_, ok = d.Property("cache")
	require.False(t, ok)
}

func TestNewFlow(t *testing.T) {
	f, err := NewFlow(parseType(t, `package app

type CheckoutFlow struct{}

func (CheckoutFlow) Cart()     {}
func (CheckoutFlow) Payment()  {}
func (CheckoutFlow) validate() {}
`, "CheckoutFlow"))
	require.NoError(t, err)
	require.Equal(t, "Checkout", f.Name())
	require.True(t, f.Available())
	require.Equal(t, []string{"Cart", "Payment"}, f.Steps())
	require.Equal(t, "Cart", f.Start())

	f, err = NewFlow(parseType(t, "package app\n\ntype IdleFlow struct{}\n", "IdleFlow"))
	require.NoError(t, err)
	require.False(t, f.Available())
	require.Empty(t, f.Start())
}

func TestNewDataSource(t *testing.T) {
	t.Run("settings", func(t *testing.T) {
		ds, err := NewDataSource(parseType(t, "package app\n\ntype MainDataSource struct {\n\tDriver   string `value:\"sqlite\"`\n\tURL      string `value:\"file:app.db\"`\n\tUsername string `value:\"sa\"`\n\tPooled   bool   `value:\"false\"`\n\tDDL      string `value:\"update\"`\n}\n", "MainDataSource"))
		require.NoError(t, err)
		require.Equal(t, "Main", ds.Name())
		require.Equal(t, DataSourceSettings{
			Driver:   "sqlite",
			URL:      "file:app.db",
			Username: "sa",
			Pooled:   false,
			DDL:      "update",
		}, ds.Settings())
	})

	t.Run("pooled by default", func(t *testing.T) {
		ds, err := NewDataSource(parseType(t, "package app\n\ntype MainDataSource struct {\n\tDriver string `value:\"pg\"`\n}\n", "MainDataSource"))
		require.NoError(t, err)
		require.True(t, ds.Settings().Pooled)
	})

	t.Run("missing driver", func(t *testing.T) {
		_, err := NewDataSource(parseType(t, "package app\n\ntype MainDataSource struct{}\n", "MainDataSource"))
		require.ErrorIs(t, err, ErrMissingDriver)
	})

	t.Run("disabled without driver", func(t *testing.T) {
		ds, err := NewDataSource(parseType(t, "package app\n\n//roster:disabled\ntype SpareDataSource struct{}\n", "SpareDataSource"))
		require.NoError(t, err)
		require.False(t, ds.Available())
	})

	t.Run("bad pooled", func(t *testing.T) {
		_, err := NewDataSource(parseType(t, "package app\n\ntype MainDataSource struct {\n\tDriver string `value:\"pg\"`\n\tPooled bool   `value:\"sometimes\"`\n}\n", "MainDataSource"))
		require.ErrorIs(t, err, ErrInvalidSetting)
	})
}

func TestNewService(t *testing.T) {
	s, err := NewService(parseType(t, "package app\n\ntype MailService struct{}\n", "MailService"))
	require.NoError(t, err)
	require.Equal(t, "Mail", s.Name())
	require.True(t, s.Transactional())
	require.True(t, s.Available())

	s, err = NewService(parseType(t, "package app\n\n//roster:disabled\n//roster:transactional false\ntype BatchService struct{}\n", "BatchService"))
	require.NoError(t, err)
	require.False(t, s.Transactional())
	require.False(t, s.Available())

	_, err = NewService(parseType(t, "package app\n\n//roster:transactional maybe\ntype OddService struct{}\n", "OddService"))
	require.ErrorIs(t, err, ErrInvalidValue)
}
