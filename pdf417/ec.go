package pdf417

import (
	"fmt"

	"github.com/ericlevine/zxscan"
)

// Error correction works over the integers modulo 929, generated by 3.
const (
	fieldSize      = numberOfCodewords
	fieldGenerator = 3
)

var (
	expTable [fieldSize]int
	logTable [fieldSize]int
)

func init() {
	x := 1
	for i := range expTable {
		expTable[i] = x
		x = x * fieldGenerator % fieldSize
	}
	for i := 0; i < fieldSize-1; i++ {
		logTable[expTable[i]] = i
	}
}

func gfAdd(a, b int) int { return (a + b) % fieldSize }

func gfSub(a, b int) int { return (fieldSize + a - b) % fieldSize }

func gfMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[(logTable[a]+logTable[b])%(fieldSize-1)]
}

// gfInv panics on zero; callers check first.
func gfInv(a int) int {
	if a == 0 {
		panic("pdf417: inverse of zero")
	}
	return expTable[fieldSize-1-logTable[a]]
}

// poly is a polynomial over the field, highest degree coefficient first,
// without leading zeros except for the zero polynomial itself.
type poly []int

func newPoly(coefficients ...int) poly {
	i := 0
	for i < len(coefficients)-1 && coefficients[i] == 0 {
		i++
	}
	if len(coefficients) == 0 {
		return poly{0}
	}
	return poly(coefficients[i:])
}

func monomial(degree, coefficient int) poly {
	if coefficient == 0 {
		return poly{0}
	}
	p := make(poly, degree+1)
	p[0] = coefficient
	return p
}

func (p poly) degree() int { return len(p) - 1 }

func (p poly) isZero() bool { return p[0] == 0 }

// coefficient returns the coefficient of x^degree.
func (p poly) coefficient(degree int) int { return p[len(p)-1-degree] }

func (p poly) evaluateAt(a int) int {
	if a == 0 {
		return p.coefficient(0)
	}
	result := 0
	if a == 1 {
		for _, c := range p {
			result = gfAdd(result, c)
		}
		return result
	}
	result = p[0]
	for _, c := range p[1:] {
		result = gfAdd(gfMul(a, result), c)
	}
	return result
}

func (p poly) add(q poly) poly {
	if p.isZero() {
		return q
	}
	if q.isZero() {
		return p
	}
	small, large := p, q
	if len(small) > len(large) {
		small, large = large, small
	}
	sum := make([]int, len(large))
	diff := len(large) - len(small)
	copy(sum, large[:diff])
	for i := diff; i < len(large); i++ {
		sum[i] = gfAdd(small[i-diff], large[i])
	}
	return newPoly(sum...)
}

func (p poly) negative() poly {
	n := make([]int, len(p))
	for i, c := range p {
		n[i] = gfSub(0, c)
	}
	return newPoly(n...)
}

func (p poly) subtract(q poly) poly {
	if q.isZero() {
		return p
	}
	return p.add(q.negative())
}

func (p poly) multiply(q poly) poly {
	if p.isZero() || q.isZero() {
		return poly{0}
	}
	product := make([]int, len(p)+len(q)-1)
	for i, a := range p {
		for j, b := range q {
			product[i+j] = gfAdd(product[i+j], gfMul(a, b))
		}
	}
	return newPoly(product...)
}

func (p poly) scale(s int) poly {
	if s == 0 {
		return poly{0}
	}
	if s == 1 {
		return p
	}
	out := make([]int, len(p))
	for i, c := range p {
		out[i] = gfMul(c, s)
	}
	return newPoly(out...)
}

func (p poly) multiplyByMonomial(degree, coefficient int) poly {
	if coefficient == 0 {
		return poly{0}
	}
	out := make([]int, len(p)+degree)
	for i, c := range p {
		out[i] = gfMul(c, coefficient)
	}
	return newPoly(out...)
}

// correctErrors fixes received in place using its trailing ecCount error
// correction codewords and returns the number of corrected codewords.
func correctErrors(received []int, ecCount int) (int, error) {
	p := newPoly(received...)
	syndromes := make([]int, ecCount)
	failed := false
	for i := ecCount; i > 0; i-- {
		s := p.evaluateAt(expTable[i])
		syndromes[ecCount-i] = s
		if s != 0 {
			failed = true
		}
	}
	if !failed {
		return 0, nil
	}

	sigma, omega, err := euclidean(monomial(ecCount, 1), newPoly(syndromes...), ecCount)
	if err != nil {
		return 0, err
	}
	locations, err := errorLocations(sigma)
	if err != nil {
		return 0, err
	}
	magnitudes, err := errorMagnitudes(omega, sigma, locations)
	if err != nil {
		return 0, err
	}
	for i, loc := range locations {
		position := len(received) - 1 - logTable[loc]
		if position < 0 {
			return 0, fmt.Errorf("error location %d outside %d codewords: %w", position, len(received), zxscan.ErrChecksum)
		}
		received[position] = gfSub(received[position], magnitudes[i])
	}
	return len(locations), nil
}

func euclidean(a, b poly, r int) (sigma, omega poly, err error) {
	if a.degree() < b.degree() {
		a, b = b, a
	}
	rLast, rCur := a, b
	tLast, tCur := poly{0}, poly{1}
	for rCur.degree() >= r/2 {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = rCur, tCur
		if rLast.isZero() {
			return nil, nil, fmt.Errorf("remainder vanished: %w", zxscan.ErrChecksum)
		}
		rCur = rLastLast
		q := poly{0}
		leadInverse := gfInv(rLast.coefficient(rLast.degree()))
		for rCur.degree() >= rLast.degree() && !rCur.isZero() {
			diff := rCur.degree() - rLast.degree()
			s := gfMul(rCur.coefficient(rCur.degree()), leadInverse)
			q = q.add(monomial(diff, s))
			rCur = rCur.subtract(rLast.multiplyByMonomial(diff, s))
		}
		tCur = q.multiply(tLast).subtract(tLastLast).negative()
	}
	atZero := tCur.coefficient(0)
	if atZero == 0 {
		return nil, nil, fmt.Errorf("error locator has no constant term: %w", zxscan.ErrChecksum)
	}
	inverse := gfInv(atZero)
	return tCur.scale(inverse), rCur.scale(inverse), nil
}

func errorLocations(locator poly) ([]int, error) {
	n := locator.degree()
	result := make([]int, 0, n)
	for i := 1; i < fieldSize && len(result) < n; i++ {
		if locator.evaluateAt(i) == 0 {
			result = append(result, gfInv(i))
		}
	}
	if len(result) != n {
		return nil, fmt.Errorf("found %d of %d error locations: %w", len(result), n, zxscan.ErrChecksum)
	}
	return result, nil
}

func errorMagnitudes(evaluator, locator poly, locations []int) ([]int, error) {
	degree := locator.degree()
	if degree < 1 {
		return nil, nil
	}
	derivative := make([]int, degree)
	for i := 1; i <= degree; i++ {
		derivative[degree-i] = gfMul(i, locator.coefficient(i))
	}
	formal := newPoly(derivative...)
	result := make([]int, len(locations))
	for i, loc := range locations {
		xiInverse := gfInv(loc)
		denominator := formal.evaluateAt(xiInverse)
		if denominator == 0 {
			return nil, fmt.Errorf("zero error magnitude denominator: %w", zxscan.ErrChecksum)
		}
		numerator := gfSub(0, evaluator.evaluateAt(xiInverse))
		result[i] = gfMul(numerator, gfInv(denominator))
	}
	return result, nil
}

// errorCorrectionCodewords returns the 2^(level+1) check codewords for data.
// Appended to data they make a codeword sequence whose polynomial vanishes at
// 3^1 through 3^k, which is what correctErrors verifies.
func errorCorrectionCodewords(data []int, level int) []int {
	k := ecCodewordCount(level)
	generator := poly{1}
	for i := 1; i <= k; i++ {
		generator = generator.multiply(poly{1, gfSub(0, expTable[i])})
	}
	remainder := newPoly(data...).multiplyByMonomial(k, 1)
	lead := gfInv(generator[0])
	for !remainder.isZero() && remainder.degree() >= generator.degree() {
		diff := remainder.degree() - generator.degree()
		s := gfMul(remainder[0], lead)
		remainder = remainder.subtract(generator.multiplyByMonomial(diff, s))
	}
	check := make([]int, k)
	offset := k - len(remainder)
	for i, c := range remainder {
		check[offset+i] = gfSub(0, c)
	}
	return check
}

func ecCodewordCount(level int) int {
	return 1 << (level + 1)
}
