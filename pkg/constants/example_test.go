package constants_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/rollcall/pkg/constants"
)

// Example demonstrates using constants for common operations
func Example() {
	dir, err := os.MkdirTemp("", "rollcall-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, constants.CatalogFile)
	if err := os.WriteFile(file, []byte("[]\n"), constants.FilePermissions); err != nil {
		panic(err)
	}

	fmt.Printf("Wrote %s with %o permissions\n", constants.CatalogFile, constants.FilePermissions)
	// Output:
	// Wrote catalog.yaml with 644 permissions
}

// Example_patterns shows the default image naming patterns
func Example_patterns() {
	fmt.Println(constants.PortraitMarker)
	fmt.Println(constants.VariantSuffix)
	fmt.Println(constants.NullPortrait)
	// Output:
	// Portrait
	// _Small
	// NPC_Portrait_Null
}
