package models

// PendingAddress is a stored address that still has no coordinates.
type PendingAddress struct {
	ID      int    // ID is the unique identifier of the stored address.
	Address string // Address is the text to be geocoded.
}
