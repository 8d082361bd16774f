// Package auth implements credential registration, salted-hash
// authentication, and session-token issuance over two flat credential
// stores and a single-line local session file.
package auth

// Credential files on disk store the fingerprint below in decimal, so the
// algorithm is frozen bit-for-bit. It is weak and deterministic: a
// reproducible value for equality checks, not a cryptographic password hash.

const hashModulus = 134217757

// hashKey is the fixed cycle of 16 small primes used as modular bases.
var hashKey = [16]uint64{23, 29, 17, 13, 19, 23, 37, 7, 7, 31, 11, 13, 5, 7, 41, 5}

// Salt derives the per-username salt: the product of each character code
// weighted by its 1-based position, mod 127. Order-sensitive; collisions
// are accepted, the salt only perturbs the hash.
func Salt(username string) uint64 {
	s := uint64(1)
	for i := 0; i < len(username); i++ {
		s = s * uint64(username[i]) % 127
		s = s * uint64(i+1) % 127
	}
	return s
}

// Hash fingerprints password under salt: the salt plus, for each character,
// the cycled prime raised to the character code mod 134217757. The first and
// last character codes are bumped by salt mod 10 before exponentiation.
func Hash(password string, salt uint64) uint64 {
	h := salt
	last := len(password) - 1
	for i := 0; i < len(password); i++ {
		exp := uint64(password[i])
		if i == 0 || i == last {
			exp += salt % 10
		}
		h += modexp(hashKey[i%16], exp, hashModulus)
	}
	return h
}

// modexp is square-and-multiply modular exponentiation. The modulus is
// under 2^27 so intermediate products fit a uint64 comfortably.
func modexp(base, exp, mod uint64) uint64 {
	result := uint64(1)
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = result * base % mod
		}
		base = base * base % mod
		exp >>= 1
	}
	return result
}
