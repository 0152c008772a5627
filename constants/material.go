package constants

import "strings"

// MaterialPrefixes is the whitelist of recognized material-number prefixes.
// Tokens that match none of these are dropped from the Material No column;
// that is a business filter, not a parse failure.
var MaterialPrefixes = []string{"B12", "12", "B16", "15"}

// FilterMaterialCode returns the token verbatim when it carries a recognized
// prefix, otherwise "".
func FilterMaterialCode(token string) string {
	for _, p := range MaterialPrefixes {
		if strings.HasPrefix(token, p) {
			return token
		}
	}
	return ""
}

// UnknownDocumentID is stored when no RFQ number can be recovered.
const UnknownDocumentID = "Unknown"
