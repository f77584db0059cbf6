package tcgapi

import (
	"fmt"
	"strings"
)

// NameQuery matches every card whose name starts with name, so forms like
// "Pikachu V" are included.
func NameQuery(name string) string {
	return fmt.Sprintf(`name:"%s*"`, escape(name))
}

// NameInSetQuery matches name exactly within one set.
func NameInSetQuery(name, setID string) string {
	return fmt.Sprintf(`name:"%s" set.id:%s`, escape(name), strings.TrimSpace(setID))
}

func escape(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), `"`, `\"`)
}
