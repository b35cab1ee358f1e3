// SPDX-License-Identifier: Apache-2.0

package doctor

// ANSI escape sequences used by the diagnostics and resolution boxes
const (
	Red    = "\033[31m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	White  = "\033[37m"
	Gray   = "\033[90m"
	Reset  = "\033[0m"
	Bold   = "\033[1m"
)
