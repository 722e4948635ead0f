package seed

import (
	"bytes"
	_ "embed"
)

//go:embed demo.yaml
var demoFixture []byte

// Demo returns the bundled demo data set.
func Demo() (Fixture, error) {
	return Parse(bytes.NewReader(demoFixture))
}
