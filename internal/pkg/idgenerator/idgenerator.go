// nolint: gochecknoglobals
package idgenerator

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	RunIdLength     = 10
	RequestIdLength = 15
)

// alphabet used in ID generation.
var alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func RunId() string {
	return gonanoid.MustGenerate(alphabet, RunIdLength)
}

func RequestId() string {
	return gonanoid.MustGenerate(alphabet, RequestIdLength)
}
