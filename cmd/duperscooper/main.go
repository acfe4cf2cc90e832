// Command duperscooper finds perceptual and exact audio duplicates across a
// music collection, stages them for safe reversible deletion, and restores
// them on demand.
package main

import (
	"os"
)

func main() {
	os.Exit(Execute())
}
