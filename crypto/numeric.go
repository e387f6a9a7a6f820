package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// firstPrimes holds all primes below 1000, used for trial division before
// running the expensive Miller-Rabin rounds.
var firstPrimes = smallPrimes(1000)

// smallPrimes returns all primes strictly below limit via a sieve of
// Eratosthenes.
func smallPrimes(limit int) []uint64 {
	if limit < 3 {
		return nil
	}
	composite := make([]bool, limit)
	var primes []uint64
	for i := 2; i < limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, uint64(i))
		for k := i * i; k < limit; k += i {
			composite[k] = true
		}
	}
	return primes
}

// expMod computes base^exp mod m by square-and-multiply, scanning the
// exponent bits from the most significant down. O(log exp) multiplications.
func expMod(base, exp, m *big.Int) *big.Int {
	result := big.NewInt(1)
	result.Mod(result, m)
	b := new(big.Int).Mod(base, m)
	for i := exp.BitLen() - 1; i >= 0; i-- {
		result.Mul(result, result).Mod(result, m)
		if exp.Bit(i) == 1 {
			result.Mul(result, b).Mod(result, m)
		}
	}
	return result
}

// millerRabin runs the given number of Miller-Rabin rounds on n with
// independently drawn random bases. n must be odd and greater than 3.
// A false result is definitive; a true result is wrong with probability at
// most 4^-rounds.
func millerRabin(n *big.Int, rounds int) (bool, error) {
	nMinusOne := new(big.Int).Sub(n, one)

	// n-1 = d * 2^s with d odd
	d := new(big.Int).Set(nMinusOne)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	baseRange := new(big.Int).Sub(n, big.NewInt(3)) // bases drawn from [2, n-2]
	for i := 0; i < rounds; i++ {
		a, err := rand.Int(rand.Reader, baseRange)
		if err != nil {
			return false, fmt.Errorf("drawing miller-rabin base: %w", err)
		}
		a.Add(a, two)

		x := expMod(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinusOne) == 0 {
			continue
		}
		witness := true
		for r := 1; r < s; r++ {
			x.Mul(x, x).Mod(x, n)
			if x.Cmp(nMinusOne) == 0 {
				witness = false
				break
			}
		}
		if witness {
			return false, nil
		}
	}
	return true, nil
}

// generatePrime returns a probable prime of exactly bits bits. Candidates are
// drawn uniformly from [2^(bits-1), 2^bits), forced odd, filtered by trial
// division and then subjected to Miller-Rabin.
func generatePrime(bits, rounds int) (*big.Int, error) {
	lowerBound := new(big.Int).Lsh(one, uint(bits-1))

	// Expected attempts grow with ln(2^bits); this bound leaves a wide margin.
	maxAttempts := 100 * bits
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := rand.Int(rand.Reader, lowerBound)
		if err != nil {
			return nil, fmt.Errorf("drawing prime candidate: %w", err)
		}
		candidate.Add(candidate, lowerBound)
		candidate.SetBit(candidate, 0, 1)

		if divisibleBySmallPrime(candidate) {
			continue
		}
		ok, err := millerRabin(candidate, rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("no prime of %d bits found after %d attempts", bits, maxAttempts)
}

func divisibleBySmallPrime(n *big.Int) bool {
	rem := new(big.Int)
	p := new(big.Int)
	for _, sp := range firstPrimes {
		p.SetUint64(sp)
		if rem.Mod(n, p).Sign() == 0 {
			return n.Cmp(p) != 0
		}
	}
	return false
}

// gcd returns the greatest common divisor of a and b by Euclid's algorithm.
func gcd(a, b *big.Int) *big.Int {
	x := new(big.Int).Set(a)
	y := new(big.Int).Set(b)
	for y.Sign() != 0 {
		x.Mod(x, y)
		x, y = y, x
	}
	return x
}

// modInverse returns x in [1, m) with (a*x) mod m == 1, computed with the
// extended Euclidean algorithm. It fails when a and m are not coprime.
func modInverse(a, m *big.Int) (*big.Int, error) {
	g, x := extendedGCD(new(big.Int).Mod(a, m), new(big.Int).Set(m))
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("no modular inverse: gcd is %s", g)
	}
	return x.Mod(x, m), nil
}

// extendedGCD returns gcd(a, b) together with a Bezout coefficient x such
// that a*x + b*y == gcd(a, b) for some y.
func extendedGCD(a, b *big.Int) (g, x *big.Int) {
	r0, r1 := new(big.Int).Set(a), new(big.Int).Set(b)
	x0, x1 := big.NewInt(1), big.NewInt(0)
	q := new(big.Int)
	t := new(big.Int)
	for r1.Sign() != 0 {
		q.Div(r0, r1)
		t.Mul(q, r1)
		r0.Sub(r0, t)
		r0, r1 = r1, r0
		t.Mul(q, x1)
		x0.Sub(x0, t)
		x0, x1 = x1, x0
	}
	return r0, x0
}
