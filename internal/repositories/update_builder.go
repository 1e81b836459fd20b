package repositories

import (
	"strings"
	"time"

	"lager/internal/models"
)

// UpdateStatement is a parameterised UPDATE with '?' placeholders.
type UpdateStatement struct {
	SQL  string
	Args []interface{}
}

type assignment struct {
	column string
	value  interface{}
}

// BuildUpdate assembles the partial update for one article. Only the provided
// fields appear in the SET clause, always in declaration order
// (name, description, quantity, price), followed by updated_at. Values are
// bound parameters; column names come from this fixed list only.
func BuildUpdate(ean string, changes models.ArticleUpdate, now time.Time) (UpdateStatement, error) {
	var set []assignment
	if changes.Name != nil {
		set = append(set, assignment{"name", *changes.Name})
	}
	if changes.Description != nil {
		set = append(set, assignment{"description", *changes.Description})
	}
	if changes.Quantity != nil {
		set = append(set, assignment{"quantity", *changes.Quantity})
	}
	if changes.Price != nil {
		set = append(set, assignment{"price", *changes.Price})
	}
	if len(set) == 0 {
		return UpdateStatement{}, ErrNoFields
	}
	set = append(set, assignment{"updated_at", now})

	var sb strings.Builder
	args := make([]interface{}, 0, len(set)+1)
	sb.WriteString("UPDATE articles SET ")
	for i, a := range set {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.column)
		sb.WriteString(" = ?")
		args = append(args, a.value)
	}
	sb.WriteString(" WHERE ean_code = ?")
	args = append(args, ean)

	return UpdateStatement{SQL: sb.String(), Args: args}, nil
}

// likePattern escapes LIKE wildcards in term with '!' and wraps it for a substring match.
func likePattern(term string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + strings.ToLower(r.Replace(term)) + "%"
}
