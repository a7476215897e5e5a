package scan

import (
	"fmt"
	"strconv"
)

// ParseCigar decodes a SAM CIGAR string into a slice of CigarOp.
func ParseCigar(cigar string) ([]CigarOp, error) {
	if cigar == "*" || cigar == "" {
		return nil, nil
	}
	var ops []CigarOp
	i := 0
	for i < len(cigar) {
		start := i
		for i < len(cigar) && cigar[i] >= '0' && cigar[i] <= '9' {
			i++
		}
		if i == start {
			return nil, fmt.Errorf("invalid CIGAR string %q: expected length at offset %d", cigar, start)
		}
		length, err := strconv.ParseInt(cigar[start:i], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid CIGAR string %q: %w", cigar, err)
		}
		if i >= len(cigar) {
			return nil, fmt.Errorf("invalid CIGAR string %q: missing operation after length", cigar)
		}
		op := cigar[i]
		switch op {
		case 'M', 'I', 'D', 'N', 'S', 'H', 'P', 'X', '=':
		default:
			return nil, fmt.Errorf("invalid CIGAR operation %q in %q", op, cigar)
		}
		ops = append(ops, CigarOp{Length: int32(length), Op: op})
		i++
	}
	return ops, nil
}
