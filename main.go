package main

import "github.com/headgrade/headgrade/cmd"

// execCmd indirection keeps main testable.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
