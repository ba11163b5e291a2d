package board

// prng is the xorshift64* generator used for Zobrist keys and magic search.
// A fixed seed keeps hashes reproducible across runs.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		panic("board: prng seed must be non-zero")
	}
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// sparse returns a value with roughly 1/8 of its bits set.
func (p *prng) sparse() uint64 {
	return p.next() & p.next() & p.next()
}
