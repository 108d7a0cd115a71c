package kernel

// Domain is one polyhedral iteration domain. Its Inames range over the
// domain's set dimensions; Parameters are the names the domain's bounds are
// expressed in. A parameter may itself be an iname of an enclosing domain
// (forcing a nesting order) or a temporary variable written at run time
// (forcing the writer to be scheduled before the loop is entered).
type Domain struct {
	Inames     []string
	Parameters []string

	// Parent is the index of the parent domain in Kernel.Domains, or -1
	// for a root of the domain tree.
	Parent int
}
