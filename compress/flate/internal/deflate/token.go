// Copyright (c) 2026, The fastgz Authors.
// SPDX-License-Identifier: BSD-3-Clause

package deflate

import "math/bits"

// A token is either a literal byte or a back-reference. Matches pack
// length-minMatch in bits 16-23 and distance-1 in bits 0-14.
type token uint32

const matchFlag = 1 << 30

func literalToken(lit byte) token {
	return token(lit)
}

func matchToken(length, dist uint32) token {
	return token(matchFlag | (length-minMatch)<<16 | (dist - 1))
}

func (t token) isLiteral() bool {
	return t&matchFlag == 0
}

func (t token) literal() byte {
	return byte(t)
}

func (t token) match() (length, dist uint32) {
	return uint32(t>>16)&0xff + minMatch, uint32(t)&0x7fff + 1
}

// RFC 1951 length code table: codes 257-285 cover lengths 3-258, each with
// a base value and a run of extra bits.
var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtraBits = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}

	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193,
		12289, 16385, 24577,
	}
	distExtraBits = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// lengthSym maps length-minMatch to its length code offset (0-28, i.e.
// symbol 257+offset).
var lengthSym [256]uint8

func init() {
	for i := 0; i < 28; i++ {
		for l := lengthBase[i]; l < lengthBase[i+1]; l++ {
			lengthSym[l-minMatch] = uint8(i)
		}
	}
	lengthSym[maxMatch-minMatch] = 28
}

// distanceSym returns the distance code (0-29) for a distance in 1..32768.
func distanceSym(dist uint32) uint32 {
	if dist <= 4 {
		return dist - 1
	}
	msb := uint32(31 - bits.LeadingZeros32(dist-1))
	extra := msb - 1
	return ((dist - 1) >> extra) + 2*extra
}
