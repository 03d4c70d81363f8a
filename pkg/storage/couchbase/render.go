package couchbase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adfharrison1/docgate/pkg/domain"
)

var (
	errEmptyStatement   = errors.New("statement selects nothing")
	errMissingParameter = errors.New("statement parameter not bound")
	errInvalidName      = errors.New("invalid identifier")
)

// Render turns a statement into N1QL text and the named parameters to send
// with it. Parameter names in the result carry the "$" prefix.
func Render(bucket string, stmt domain.Statement) (string, map[string]interface{}, error) {
	if err := checkName(bucket); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	switch {
	case stmt.IsComposite():
		sb.WriteString("SELECT ")
		for i, field := range stmt.Fields {
			if err := checkName(field.Name); err != nil {
				return "", nil, err
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sub, err := renderSelection(bucket, stmt, field.Selection)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString("(")
			sb.WriteString(sub)
			sb.WriteString(")")
			if field.Selection.First {
				sb.WriteString("[0]")
			}
			sb.WriteString(" AS `")
			sb.WriteString(field.Name)
			sb.WriteString("`")
		}
	case stmt.From != nil:
		sub, err := renderSelection(bucket, stmt, *stmt.From)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(sub)
		if stmt.From.First {
			sb.WriteString(" LIMIT 1")
		}
	default:
		return "", nil, errEmptyStatement
	}

	params := make(map[string]interface{}, len(stmt.Params))
	for name, value := range stmt.Params {
		params["$"+name] = value
	}
	return sb.String(), params, nil
}

func renderSelection(bucket string, stmt domain.Statement, sel domain.Selection) (string, error) {
	alias := sel.Alias
	if alias == "" {
		alias = "d"
	}
	if err := checkName(alias); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT META(%s).id, %s.* FROM `%s` AS %s", alias, alias, bucket, alias)

	if sel.KeysParam != "" {
		if err := checkParam(stmt, sel.KeysParam); err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, " USE KEYS $%s", sel.KeysParam)
	}

	for i, p := range sel.Where {
		if err := checkName(p.Field); err != nil {
			return "", err
		}
		if err := checkParam(stmt, p.Param); err != nil {
			return "", err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s.`%s` = $%s", alias, p.Field, p.Param)
	}
	return sb.String(), nil
}

func checkParam(stmt domain.Statement, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if _, ok := stmt.Params[name]; !ok {
		return fmt.Errorf("%w: $%s", errMissingParameter, name)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "`$ \t\n") {
		return fmt.Errorf("%w: %q", errInvalidName, name)
	}
	return nil
}
