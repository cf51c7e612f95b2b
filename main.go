package main

import "github.com/cppyy-build/clingwrapper/cmd"

func main() {
	cmd.Execute()
}
