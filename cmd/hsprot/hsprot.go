/*

Command hsprot decodes a single Heroes of the Storm replay file and
prints it as JSON, or, with -validate, a stable identifier for it.

*/
package main

import (
	"crypto/md5"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/heroesreplay/hsprot"
	"github.com/heroesreplay/hsprot/rep"
)

var validate = flag.Bool("validate", false, "print a stable replay identifier instead of the full JSON")

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	r, err := rep.NewFromFile(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if *validate {
		fmt.Println(replayID(r))
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		fmt.Println(hsprot.WrapError(hsprot.OutputError, "hsprot: encoding replay", err))
		os.Exit(1)
	}
}

// replayID derives a stable identifier for r: the MD5 digest of the
// sorted player names, the version string and the random seed, rendered
// as a hyphenated UUID, so the same match always yields the same id
// regardless of player array order.
func replayID(r *rep.Replay) string {
	names := make([]string, len(r.Players))
	for i, p := range r.Players {
		names[i] = p.Name
	}
	sort.Strings(names)

	sum := md5.Sum([]byte(strings.Join(names, "") + r.VersionString + fmt.Sprint(r.RandomSeed)))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		return ""
	}
	return id.String()
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Printf("\t%s [-validate] FILE.StormReplay\n", os.Args[0])
	fmt.Println("\tRun with '-h' to see a list of available flags.")
}
