package errors_test

import (
	"fmt"

	"github.com/agentstation/rollcall/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewImageNotFoundError("Portrait_Ghost.png", "label")

	if errors.IsStructural(err) {
		fmt.Println("Pass aborted")
	}

	// Output: Pass aborted
}

// Example_recordLevel shows that an invalid name only skips one record.
func Example_recordLevel() {
	err := errors.NewInvalidNameError("", "empty personal name")

	switch {
	case errors.IsStructural(err):
		fmt.Println("abort")
	case errors.IsInvalidName(err):
		fmt.Println("skip record")
	}

	// Output: skip record
}

// Example_wrapIO shows the IO wrapping helper.
func Example_wrapIO() {
	err := errors.WrapIO("write", "catalog.yaml", errors.New("disk full"))
	fmt.Println(err)

	// Output: IO error during write of catalog.yaml: disk full
}
