//go:build !debug

package gwdg

func (r *Registry) assertList() {}
