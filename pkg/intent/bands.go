package intent

import (
	"errors"
	"fmt"
)

// ErrNoBand is returned for an EARFCN outside every supported band.
var ErrNoBand = errors.New("invalid EARFCNDL: no matching band")

// DuplexMode is the duplexing scheme of a band.
type DuplexMode uint8

const (
	FDD DuplexMode = iota
	TDD
)

// String returns the mode name as reported in Capabilities.LTE.DuplexMode.
func (m DuplexMode) String() string {
	if m == TDD {
		return "TDDMode"
	}
	return "FDDMode"
}

// Band is an E-UTRA operating band.
type Band struct {
	ID            int
	Mode          DuplexMode
	StartEARFCNDL int
	// StartEARFCNUL is -1 for downlink-only bands.
	StartEARFCNUL int
	CountEARFCN   int
}

// Contains reports whether earfcn is a downlink EARFCN of the band.
func (b Band) Contains(earfcn int) bool {
	return earfcn >= b.StartEARFCNDL && earfcn < b.StartEARFCNDL+b.CountEARFCN
}

// UplinkEARFCN returns the uplink EARFCN paired with a downlink EARFCN.
func (b Band) UplinkEARFCN(dl int) (int, error) {
	if !b.Contains(dl) {
		return 0, fmt.Errorf("%w: %d not in band %d", ErrNoBand, dl, b.ID)
	}
	switch {
	case b.Mode == TDD:
		return dl, nil
	case b.StartEARFCNUL < 0:
		return 0, fmt.Errorf("band %d is downlink only", b.ID)
	default:
		return b.StartEARFCNUL + dl - b.StartEARFCNDL, nil
	}
}

// 3GPP TS 36.101 table 5.7.3-1.
var bands = []Band{
	{1, FDD, 0, 18000, 600},
	{2, FDD, 600, 18600, 600},
	{3, FDD, 1200, 19200, 750},
	{4, FDD, 1950, 19950, 450},
	{5, FDD, 2400, 20400, 250},
	{6, FDD, 2650, 20650, 100},
	{7, FDD, 2750, 20750, 700},
	{8, FDD, 3450, 21450, 350},
	{9, FDD, 3800, 21800, 350},
	{10, FDD, 4150, 22150, 600},
	{11, FDD, 4750, 22750, 200},
	{12, FDD, 5010, 23010, 170},
	{13, FDD, 5180, 23180, 100},
	{14, FDD, 5280, 23280, 100},
	{17, FDD, 5730, 23730, 120},
	{18, FDD, 5850, 23850, 150},
	{19, FDD, 6000, 24000, 150},
	{20, FDD, 6150, 24150, 300},
	{21, FDD, 6450, 24450, 150},
	{22, FDD, 6600, 24600, 800},
	{23, FDD, 7500, 25500, 200},
	{24, FDD, 7700, 25700, 340},
	{25, FDD, 8040, 26040, 650},
	{26, FDD, 8690, 26690, 350},
	{27, FDD, 9040, 27040, 170},
	{28, FDD, 9210, 27210, 450},
	{29, FDD, 9660, -1, 110},
	{30, FDD, 9770, 27660, 100},
	{31, FDD, 9870, 27760, 50},
	{32, FDD, 9920, -1, 440},
	{33, TDD, 36000, 36000, 200},
	{34, TDD, 36200, 36200, 150},
	{35, TDD, 36350, 36350, 600},
	{36, TDD, 36950, 36950, 600},
	{37, TDD, 37550, 37550, 200},
	{38, TDD, 37750, 37750, 500},
	{39, TDD, 38250, 38250, 400},
	{40, TDD, 38650, 38650, 1000},
	{41, TDD, 39650, 39650, 1940},
	{42, TDD, 41590, 41590, 2000},
	{43, TDD, 43590, 43590, 2000},
}

// BandForEARFCN returns the band containing a downlink EARFCN.
func BandForEARFCN(earfcndl int) (Band, error) {
	for _, b := range bands {
		if b.Contains(earfcndl) {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("%w: %d", ErrNoBand, earfcndl)
}
