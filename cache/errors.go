package cache

import "fmt"

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrConfig is the kind of every construction error.
	// A cache that failed construction must be rebuilt with valid parameters.
	ErrConfig = constError("cache: invalid configuration")

	// ErrInvalidCapacity is returned by constructors when the requested
	// capacity is below the engine minimum. It matches ErrConfig via errors.Is.
	ErrInvalidCapacity = capacityError("cache: invalid capacity")

	// ErrInvariant signals a defect in the replacement logic itself
	// (duplicate index entry, underflow, missing key during relocation).
	// The operation is aborted; the cache should be discarded.
	ErrInvariant = constError("cache: internal invariant violated")
)

type capacityError string

func (e capacityError) Error() string { return string(e) }

// Is lets ErrInvalidCapacity match ErrConfig.
func (e capacityError) Is(target error) bool { return target == ErrConfig }

// CapacityError reports a capacity below minimum.
func CapacityError(minimum, requested int) error {
	return fmt.Errorf(
		"%w: must be >=%d but %d was requested",
		ErrInvalidCapacity, minimum, requested)
}

// ConfigError reports an invalid configuration parameter.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// InvariantError reports an internal consistency failure.
func InvariantError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
