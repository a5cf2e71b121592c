package btree

import "fmt"

// KeyExistsError reports an insert of a key that is already present.
type KeyExistsError struct {
	Key any
}

func (e *KeyExistsError) Error() string {
	return fmt.Sprintf("key already exists: %v", e.Key)
}

// KeyNotFoundError reports a lookup or deletion of an absent key.
type KeyNotFoundError struct {
	Key any
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %v", e.Key)
}
