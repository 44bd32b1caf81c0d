package importer

import "strings"

// CatalogKey turns a sheet's def_id reference into a catalog template id, so
// sheets may name items by display name ("Glock 22") or by id ("glock_22").
//
// Postcondition: result contains only [a-z0-9_], has no leading, trailing or
// repeated underscores, and CatalogKey(CatalogKey(s)) == CatalogKey(s).
func CatalogKey(ref string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(ref) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-' || r == '.' || r == '/':
			pending = true
		}
	}
	return b.String()
}
