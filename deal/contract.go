package deal

import (
	"fmt"
	"strconv"
	"strings"
)

// Strain is the denomination of the contract.
type Strain uint8

const (
	StrainClubs Strain = iota
	StrainDiamonds
	StrainHearts
	StrainSpades
	StrainNoTrump
)

var strainNames = [5]string{"C", "D", "H", "S", "NT"}

func (s Strain) String() string {
	if int(s) >= len(strainNames) {
		return "?"
	}
	return strainNames[s]
}

// IsTrump reports whether s is a suit strain (as opposed to notrump).
func (s Strain) IsTrump() bool {
	return s != StrainNoTrump
}

// Contract is a (level, strain) pair, level in 1..7.
type Contract struct {
	Level  int
	Strain Strain
}

// RequiredTricks returns 6 + level, the number of tricks declarer must win.
func (c Contract) RequiredTricks() int {
	return 6 + c.Level
}

func (c Contract) String() string {
	return fmt.Sprintf("%d%s", c.Level, c.Strain)
}

// ParseContract parses strings like "1NT", "7s", case-insensitively.
func ParseContract(s string) (Contract, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Contract{}, fmt.Errorf("deal: contract %q too short", s)
	}
	level, err := strconv.Atoi(s[:1])
	if err != nil || level < 1 || level > 7 {
		return Contract{}, fmt.Errorf("deal: bad contract level in %q", s)
	}
	strainStr := s[1:]
	var strain Strain
	switch strainStr {
	case "C":
		strain = StrainClubs
	case "D":
		strain = StrainDiamonds
	case "H":
		strain = StrainHearts
	case "S":
		strain = StrainSpades
	case "NT":
		strain = StrainNoTrump
	default:
		return Contract{}, fmt.Errorf("deal: bad contract strain in %q", s)
	}
	return Contract{Level: level, Strain: strain}, nil
}
