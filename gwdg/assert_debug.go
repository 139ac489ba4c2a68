//go:build debug

package gwdg

// assertList verifies the whole list after a structural change or check,
// when the "gwdg.registry.list" assertion is enabled.
// The caller must hold the critical section.
func (r *Registry) assertList() {
	if !r.assertEnv.Enabled("gwdg.registry.list") {
		return
	}

	if err := r.verify(); err != nil {
		r.assertEnv.HandleAssertionFailure(err)
	}
}
