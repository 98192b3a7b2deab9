package study

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	SessionPrefix = "OXBRIDGE"
	suffixLen     = 9
	base36        = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// IDGenerator produces study session identifiers of the form
// OXBRIDGE-<epoch millis>-<9 uppercase base36 chars>.
type IDGenerator struct {
	Now  func() time.Time
	Rand io.Reader
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{Now: time.Now, Rand: rand.Reader}
}

func (g *IDGenerator) Next() (string, error) {
	suffix, err := g.suffix()
	if err != nil {
		return "", err
	}
	ms := strconv.FormatInt(g.Now().UnixMilli(), 10)
	return SessionPrefix + "-" + ms + "-" + suffix, nil
}

// suffix draws base36 digits by rejection sampling so every digit is equally
// likely.
func (g *IDGenerator) suffix() (string, error) {
	out := make([]byte, 0, suffixLen)
	buf := make([]byte, suffixLen*2)
	for len(out) < suffixLen {
		if _, err := io.ReadFull(g.Rand, buf); err != nil {
			return "", fmt.Errorf("session id entropy: %w", err)
		}
		for _, b := range buf {
			if b >= 252 { // 252 = 7*36
				continue
			}
			out = append(out, base36[int(b)%36])
			if len(out) == suffixLen {
				break
			}
		}
	}
	return string(out), nil
}
