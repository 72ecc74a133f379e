// Command akmc compiles AKM source modules into AKM v2 binary packages and
// inspects the resulting binaries.
package main

import "github.com/akmc/akmc/pkg/cmd"

func main() {
	cmd.Execute()
}
