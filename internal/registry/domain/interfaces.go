package registry

// RegistryProvider exposes the registry currently in effect.
type RegistryProvider interface {
	Current() *Registry
}

// HolderProvider adapts a Holder to RegistryProvider.
type HolderProvider struct{ *Holder }

// Current returns the held registry.
func (p HolderProvider) Current() *Registry { return p.Load() }

var _ RegistryProvider = HolderProvider{}
