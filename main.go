// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the sqlbind CLI.
package main

import (
	"sqlbind/cmd"
)

func main() {
	cmd.Execute()
}
