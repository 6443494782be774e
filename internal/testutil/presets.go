package testutil

// WithStandardApp adds a small bookstore application: one domain class with
// a transient field, a controller, a flow, a data source and a service.
func (b *Builder) WithStandardApp() *Builder {
	return b.
		WithDomain("Book", Field("Title", "string"), Transient("Draft", "bool")).
		WithController("Book", Methods("Index", "Show")).
		WithFlow("Checkout", Methods("Cart", "Payment")).
		WithDataSource("Main", Setting("Driver", "postgres"), Setting("URL", "postgres://localhost/books")).
		WithService("Mail", Directive("transactional", "false"))
}
