package ledger

import "fmt"

const (
	// MinAccountIDLength is the shortest accepted account identifier.
	MinAccountIDLength = 2
	// MaxAccountIDLength is the longest accepted account identifier.
	MaxAccountIDLength = 64
)

// ValidateAccountID checks that id is a valid account identifier: lowercase
// alphanumeric parts separated by single '-', '_' or '.'.
func ValidateAccountID(id string) error {
	if len(id) < MinAccountIDLength || len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: length %d is out of [%d:%d]", ErrInvalidAccountID,
			len(id), MinAccountIDLength, MaxAccountIDLength)
	}

	separated := true // no leading separator
	for i := 0; i < len(id); i++ {
		switch c := id[i]; {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			separated = false
		case c == '-' || c == '_' || c == '.':
			if separated {
				return fmt.Errorf("%w: unexpected '%c' at %d", ErrInvalidAccountID, c, i)
			}
			separated = true
		default:
			return fmt.Errorf("%w: forbidden character '%c' at %d", ErrInvalidAccountID, c, i)
		}
	}

	if separated {
		return fmt.Errorf("%w: trailing separator", ErrInvalidAccountID)
	}

	return nil
}
