//go:build !darwin

package permissions

// Other platforms gate capture and injection outside the process.
func platformGrants() []grant { return nil }
