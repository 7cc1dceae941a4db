package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsFold is a scope matching rows where any of columns contains term,
// ignoring case. JSON and text columns are both accepted. An empty term matches everything.
func ContainsFold(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		castFmt := "CAST(%s AS TEXT)"
		if db.Dialector.Name() == "mysql" {
			castFmt = "CAST(%s AS CHAR)"
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

		conds := make([]string, 0, len(columns))
		args := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			conds = append(conds, fmt.Sprintf("LOWER("+castFmt+") LIKE ? ESCAPE '!'", col))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
