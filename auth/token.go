package auth

// TokenLength is the fixed size of every session token.
const TokenLength = 18

const tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Token derives the 18-character session token for a username and its
// stored hash. Tokens are opaque keys over [0-9A-Za-z]: the first
// len(username) positions scramble each username character by repeated
// squaring mod 62, the remainder mixes two running accumulators seeded from
// the username's character-code sum and from the hash.
func Token(username string, hash uint64) string {
	buf := make([]byte, TokenLength)

	head := len(username)
	if head > TokenLength {
		head = TokenLength
	}
	for i := 0; i < head; i++ {
		v := uint64(username[i]) % 62
		rounds := i + int(hash%13)
		for r := 0; r < rounds; r++ {
			v = v * v % 62
		}
		buf[i] = tokenAlphabet[v]
	}

	var sum uint64
	for i := 0; i < len(username); i++ {
		sum += uint64(username[i])
	}
	a := sum % 62
	b := hash % 62
	for i := head; i < TokenLength; i++ {
		for r := 0; r < i; r++ {
			a = a * a % 62
			b = b * b % 62
		}
		buf[i] = tokenAlphabet[(a+b)%62]
	}
	return string(buf)
}
