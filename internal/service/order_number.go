package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber builds ORD-<base36 unix millis>-<6 random base36 chars>
func NewOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(orderNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = orderNumberAlphabet[n.Int64()]
	}

	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "ORD-" + stamp + "-" + string(suffix), nil
}
