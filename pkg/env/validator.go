package env

import (
	"regexp"
	"strings"
)

func IsEmpty(value string) bool {
	return value == ""
}

// Base58-encoded Solana address (program ID, wallet, PDA)
func IsValidSolanaAddress(address string) bool {
	matched, _ := regexp.MatchString("^[1-9A-HJ-NP-Za-km-z]{32,44}$", address)
	return matched
}

func IsValidIPAddress(ipAddress string) bool {
	if ipAddress == "localhost" {
		return true
	}
	ipPattern := `^((25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])\.){3}(25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])$`
	matched, _ := regexp.MatchString(ipPattern, ipAddress)
	return matched
}

// Port number
func IsValidPort(port string) bool {
	matched, _ := regexp.MatchString("^(102[4-9]|10[3-9][0-9]|1[1-9][0-9]{2}|[2-9][0-9]{3}|[1-5][0-9]{4}|6[0-4][0-9]{3}|65[0-4][0-9]{2}|655[0-2][0-9]|6553[0-5])$", port)
	return matched
}

// RPC endpoint URL (http or https)
func IsValidRPCURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Websocket endpoint URL (ws or wss)
func IsValidWSURL(url string) bool {
	return strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://")
}
