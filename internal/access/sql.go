package access

import (
	"fmt"
	"strings"
)

// SQL renders the scope as a WHERE fragment over the leads table (aliased
// as alias, may be empty). Placeholders are numbered from argStart.
func (s Scope) SQL(alias string, argStart int) (string, []any) {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}

	clause := "NOT " + col("is_deleted")
	if s.All {
		return clause, nil
	}

	var (
		ors  []string
		args []any
		idx  = argStart
	)
	if s.Division != nil {
		ors = append(ors, fmt.Sprintf("%s = $%d", col("division"), idx))
		args = append(args, string(*s.Division))
		idx++
	}
	if s.TeamID != nil {
		ors = append(ors, fmt.Sprintf("%s = $%d", col("team_id"), idx))
		args = append(args, *s.TeamID)
		idx++
	}
	if s.AssignedTo != nil {
		ors = append(ors, fmt.Sprintf("%s = $%d", col("assigned_to"), idx))
		args = append(args, *s.AssignedTo)
	}

	if len(ors) == 0 {
		return clause + " AND FALSE", nil
	}
	return clause + " AND (" + strings.Join(ors, " OR ") + ")", args
}
