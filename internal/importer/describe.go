package importer

import "regexp"

// bankPrefixes matches the bank-generated prefixes stripped from descriptions.
var bankPrefixes = regexp.MustCompile(`^(?i)(COMPRA INTERNACIONAL|COMPRA NACIONAL|PAGO RECURRENTE|COMPRA INTER\.)\s`)

// CleanDescription strips one known bank prefix and the single whitespace
// character after it from the start of desc.
// Anything else is returned unchanged.
func CleanDescription(desc string) string {
	return bankPrefixes.ReplaceAllString(desc, "")
}
