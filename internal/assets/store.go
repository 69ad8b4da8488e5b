package assets

import (
	"context"
	"errors"
)

// Capability is the store's authorization verdict. Fetches are gated on it.
type Capability int

const (
	CapabilityDenied Capability = iota
	CapabilityRestricted
	CapabilityLimited
	CapabilityGranted
)

// Authorized reports whether the capability permits asset lookups. Limited
// access (a user-selected subset) still authorizes fetches.
func (c Capability) Authorized() bool {
	return c == CapabilityGranted || c == CapabilityLimited
}

// String returns a human-readable name for the capability.
func (c Capability) String() string {
	switch c {
	case CapabilityDenied:
		return "denied"
	case CapabilityRestricted:
		return "restricted"
	case CapabilityLimited:
		return "limited"
	case CapabilityGranted:
		return "granted"
	default:
		return "unknown"
	}
}

// ParseCapability maps a configuration string to a Capability.
func ParseCapability(s string) (Capability, error) {
	switch s {
	case "denied":
		return CapabilityDenied, nil
	case "restricted":
		return CapabilityRestricted, nil
	case "limited":
		return CapabilityLimited, nil
	case "granted":
		return CapabilityGranted, nil
	default:
		return CapabilityDenied, errors.New("capability must be one of [denied, restricted, limited, granted]")
	}
}

// Fetch error taxonomy, mapped to HTTP statuses by the router.
var (
	ErrNotFound     = errors.New("asset not found")
	ErrAccessDenied = errors.New("asset store access denied")
	ErrLoadFailure  = errors.New("asset load failed")
)

// Handle is an opaque reference to a store asset, produced by Lookup and
// consumed by Retrieve.
type Handle interface {
	ID() string
}

// RetrieveOptions carry quality and locality preferences for byte retrieval.
type RetrieveOptions struct {
	// PreferCurrent requests the current, highest-quality version of the
	// asset rather than any cached derivative.
	PreferCurrent bool
	// AllowNetwork permits the store to fetch the asset over the network
	// when it is not cached locally.
	AllowNetwork bool
}

// Store is the external keyed binary-content repository. Implementations
// define their own concurrency contract; the bridge never assumes more than
// one in-flight call per connection.
type Store interface {
	// Authorization returns the store's current capability decision.
	Authorization(ctx context.Context) Capability

	// Lookup resolves an opaque asset ID to a handle, or ErrNotFound.
	Lookup(ctx context.Context, id string) (Handle, error)

	// Retrieve returns the asset's full binary content and an opaque
	// format tag describing its native encoding.
	Retrieve(ctx context.Context, h Handle, opts RetrieveOptions) (data []byte, formatTag string, err error)
}
