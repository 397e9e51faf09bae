package pgp

import "errors"

// Error classes. Callers distinguish a wrong passphrase (retryable,
// ErrPassphraseInvalid) from structural corruption (ErrPacket,
// ErrTruncated, ErrUnsupportedVersion) with errors.Is.
var (
	ErrPacket               = errors.New("pgp: malformed packet")
	ErrTruncated            = errors.New("pgp: truncated data")
	ErrUnsupportedVersion   = errors.New("pgp: unsupported key version")
	ErrPassphraseInvalid    = errors.New("pgp: invalid passphrase")
	ErrNoSecretMaterial     = errors.New("pgp: no secret key material")
	ErrUnsupportedAlgorithm = errors.New("pgp: unsupported public-key algorithm")
	ErrUnsupportedState     = errors.New("pgp: operation not supported in this key state")
)
