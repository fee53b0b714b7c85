package cli

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorOrange = "\033[38;5;208m"
	ColorGray   = "\033[90m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)
