//go:build tools
// +build tools

// Package tools pins the code generators run through go generate.
package coin_chat

import (
	_ "go.uber.org/mock/mockgen"
)
