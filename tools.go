//go:build tools

package broker

import (
	_ "github.com/dmarkham/enumer"
)
