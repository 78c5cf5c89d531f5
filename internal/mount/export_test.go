package mount

// Engine exposes the running engine to tests.
func (i *Instance) Engine() any { return i.eng }
