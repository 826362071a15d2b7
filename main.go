// Copyright © 2024 The Fuus Army Knife authors

package main

import "github.com/ion-fusion/fuus-army-knife/cmd"

func main() {
	cmd.Execute()
}
