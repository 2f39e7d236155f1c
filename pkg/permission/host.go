// Package permission provides the hosts that answer runtime permission
// queries and show consent prompts.
package permission

// Kind names a runtime permission.
type Kind string

// FineLocation grants access to high-accuracy (GPS based) positioning.
const FineLocation Kind = "fine_location"

// Host is the platform side of runtime permissions.
type Host interface {
	// Query reports whether kind is currently granted. It has no side effects.
	Query(kind Kind) (bool, error)

	// Prompt asks the user for kind without blocking the caller. onResult is
	// invoked at most once, from any goroutine, when the user answers.
	Prompt(kind Kind, onResult func(granted bool))
}
