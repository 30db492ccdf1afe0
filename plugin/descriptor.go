package plugin

import "context"

// Kind categorizes a plugin. It is a polymorphic tag, not a hierarchy.
type Kind string

const (
	KindCore   Kind = "core"
	KindModule Kind = "module"
)

// Factory lazily produces a capability value. It is invoked at most once
// per plugin lifetime by the loader ("server") or on demand by the
// rendering layer ("components", "hooks").
type Factory func(ctx context.Context) (any, error)

// CapabilityKind names an optional capability a plugin may expose.
type CapabilityKind string

const (
	CapabilityServer     CapabilityKind = "server"
	CapabilityComponents CapabilityKind = "components"
	CapabilityHooks      CapabilityKind = "hooks"
)

// Capabilities is the optional capability set of a plugin.
// A nil factory means the capability is absent.
type Capabilities struct {
	Server     Factory
	Components Factory
	Hooks      Factory
}

// Has reports whether the given capability is present.
func (c Capabilities) Has(kind CapabilityKind) bool {
	switch kind {
	case CapabilityServer:
		return c.Server != nil
	case CapabilityComponents:
		return c.Components != nil
	case CapabilityHooks:
		return c.Hooks != nil
	default:
		return false
	}
}

// Kinds returns the capability kinds present on this set, in a fixed order.
func (c Capabilities) Kinds() []CapabilityKind {
	var kinds []CapabilityKind
	for _, k := range []CapabilityKind{CapabilityServer, CapabilityComponents, CapabilityHooks} {
		if c.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Descriptor is the immutable definition of a plugin, supplied by an
// external catalog at registration time. Name is the primary key.
type Descriptor struct {
	Name         string       `json:"name" validate:"required"`
	Kind         Kind         `json:"kind" validate:"required,oneof=core module"`
	Version      string       `json:"version"`
	Dependencies []string     `json:"dependencies" validate:"dive,required"`
	Capabilities Capabilities `json:"-"`
}
