package service

import (
	"crypto/rand"
	"math/big"
)

const (
	linkingCodePrefix = "STU-"
	linkingCodeLength = 6
	// No 0/O or 1/I; codes get read aloud and typed from paper.
	linkingCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// CodeGenerator produces linking code strings. Generation is pure; global
// uniqueness is enforced by the store, not the generator.
type CodeGenerator interface {
	Generate() string
}

type randomCodeGenerator struct{}

func NewCodeGenerator() CodeGenerator {
	return &randomCodeGenerator{}
}

func (g *randomCodeGenerator) Generate() string {
	chars := []byte(linkingCodeChars)
	body := make([]byte, linkingCodeLength)

	for i := 0; i < linkingCodeLength; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		body[i] = chars[n.Int64()]
	}

	return linkingCodePrefix + string(body)
}
