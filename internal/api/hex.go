package api

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// decodeHex decodes a hex string with or without the 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") {
		s = "0x" + s
	}

	return hexutil.Decode(s)
}
