// Command fsmgraph loads the keeper and menu machine definitions and prints
// them as Mermaid state diagrams. It fails if a definition does not compile,
// so it doubles as a check after editing the prefab files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.design/x/clipboard"

	"github.com/milk9111/parkkeeper/keeper"
	"github.com/milk9111/parkkeeper/menu"
	"github.com/milk9111/parkkeeper/prefabs"
)

func main() {
	dir := flag.String("prefabs", "prefabs", "directory checked before the embedded definitions (empty uses only embedded)")
	machine := flag.String("machine", "all", "machine to render: keeper, menu or all")
	copyOut := flag.Bool("copy", false, "also copy the diagrams to the clipboard")
	flag.Parse()

	prefabs.SetDiskDir(*dir)

	var diagrams []string
	if *machine == "all" || *machine == "keeper" {
		m, err := keeper.Load()
		if err != nil {
			log.Fatal(err)
		}
		diagrams = append(diagrams, m.Mermaid())
	}
	if *machine == "all" || *machine == "menu" {
		m, err := menu.Load()
		if err != nil {
			log.Fatal(err)
		}
		diagrams = append(diagrams, m.Mermaid())
	}
	if len(diagrams) == 0 {
		log.Fatalf("unknown machine %q", *machine)
	}

	out := strings.Join(diagrams, "\n")
	fmt.Fprint(os.Stdout, out)

	if *copyOut {
		if err := clipboard.Init(); err != nil {
			log.Fatalf("clipboard: %v", err)
		}
		clipboard.Write(clipboard.FmtText, []byte(out))
	}
}
