package endorsement

import "fmt"

var registry = make(map[string]ExecutionPolicy)

// Register adds a named policy to the registry. Policy packages call this
// from init() (see policies/*.go), mirroring the teacher's vm module
// self-registration pattern.
func Register(p ExecutionPolicy) {
	name := p.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("endorsement: policy %q already registered", name))
	}
	registry[name] = p
}

// Lookup returns the named policy, if registered.
func Lookup(name string) (ExecutionPolicy, bool) {
	p, ok := registry[name]
	return p, ok
}
