package repository

import (
	"fmt"
	"strings"
)

// queryBuilder accumulates WHERE clauses with positional arguments.
type queryBuilder struct {
	where []string
	args  []any
}

func (b *queryBuilder) add(clause string, arg any) {
	b.args = append(b.args, arg)
	b.where = append(b.where, fmt.Sprintf(clause, len(b.args)))
}

func (b *queryBuilder) sql(base, order string, limit int) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(order)
	if limit > 0 {
		b.args = append(b.args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(b.args))
	}
	return sb.String(), b.args
}

func buildProfileQuery(f Filter) (string, []any) {
	b := &queryBuilder{}
	if f.ExcludeID != "" {
		b.add("id <> $%d", f.ExcludeID)
	}
	if f.RequireSkill {
		b.where = append(b.where, "skill_level <> ''")
	}
	if f.SkillLevel != "" {
		b.add("skill_level = $%d", string(f.SkillLevel))
	}
	return b.sql("SELECT data FROM profiles", "trust_score DESC, id ASC", f.Limit)
}

func buildRequestQuery(f RequestFilter) (string, []any) {
	b := &queryBuilder{}
	if f.UserID != "" {
		switch f.Role {
		case RoleRequester:
			b.add("requester_id = $%d", f.UserID)
		case RoleRecipient:
			b.add("matched_user_id = $%d", f.UserID)
		default:
			b.add("(requester_id = $%[1]d OR matched_user_id = $%[1]d)", f.UserID)
		}
	}
	if f.Status != "" {
		b.add("status = $%d", string(f.Status))
	}
	return b.sql("SELECT "+requestColumns+" FROM match_requests", "created_at DESC, id DESC", f.Limit)
}
