package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount presets the number of indices drawn for the provider's mesh.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
