// Copyright 2026 The VoteATX Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/open-austin/voteatx/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
