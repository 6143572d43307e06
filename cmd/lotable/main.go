// Command lotable generates, checks and packs LO lookup tables.
//
// Usage:
//
//	lotable generate                          # Write the seven reference tables
//	lotable generate -m tables.yaml -o out/   # Custom table set
//	lotable generate -i -s 32767              # Integer codes, 16-bit full scale
//	lotable generate --format wav             # PCM WAV instead of CSV
//	lotable rf --frf 500 --divider 500 --multiplier 116 --samples 29 rfTableBR.csv
//	lotable pt --offset '(500.0/328.0)*(1.0/2.0)' --samples '77*2' ptTableSR_1_2.csv
//	lotable verify rfTableSR.csv
//	lotable pack rfTableSR.csv rfTableSR.bin
//	lotable unpack --kind rf rfTableSR.bin rfTableSR.csv
//
// Every generated table is preceded by a one-line frequency summary on
// stdout. Output files are replaced atomically.
package main

import (
	"io"
	"log"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.Execute()
}
