package couchbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/docgate/pkg/domain"
)

func TestRender_ByType(t *testing.T) {
	stmt := domain.Statement{
		From: &domain.Selection{
			Alias: "d",
			Where: []domain.Predicate{{Field: "type", Param: "type"}},
		},
		Params: map[string]interface{}{"type": "customer"},
	}

	text, params, err := Render("default", stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT META(d).id, d.* FROM `default` AS d WHERE d.`type` = $type", text)
	assert.Equal(t, map[string]interface{}{"$type": "customer"}, params)
}

func TestRender_Join(t *testing.T) {
	stmt := domain.Statement{
		Fields: []domain.Field{
			{Name: "customer", Selection: domain.Selection{Alias: "c", KeysParam: "customerid", First: true}},
			{Name: "products", Selection: domain.Selection{Alias: "p", KeysParam: "productids"}},
		},
		Params: map[string]interface{}{
			"customerid": "c1",
			"productids": []string{"p1", "p2"},
		},
	}

	text, params, err := Render("shop", stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT (SELECT META(c).id, c.* FROM `shop` AS c USE KEYS $customerid)[0] AS `customer`, "+
			"(SELECT META(p).id, p.* FROM `shop` AS p USE KEYS $productids) AS `products`",
		text)
	assert.Equal(t, "c1", params["$customerid"])
	assert.Equal(t, []string{"p1", "p2"}, params["$productids"])
}

func TestRender_FirstAndMultiplePredicates(t *testing.T) {
	stmt := domain.Statement{
		From: &domain.Selection{
			Where: []domain.Predicate{{Field: "type", Param: "t"}, {Field: "name", Param: "n"}},
			First: true,
		},
		Params: map[string]interface{}{"t": "product", "n": "Pen"},
	}

	text, _, err := Render("b", stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT META(d).id, d.* FROM `b` AS d WHERE d.`type` = $t AND d.`name` = $n LIMIT 1", text)
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		stmt   domain.Statement
		err    error
	}{
		{"empty statement", "b", domain.Statement{}, errEmptyStatement},
		{
			"missing where parameter", "b",
			domain.Statement{From: &domain.Selection{Where: []domain.Predicate{{Field: "type", Param: "type"}}}},
			errMissingParameter,
		},
		{
			"missing keys parameter", "b",
			domain.Statement{Fields: []domain.Field{{Name: "c", Selection: domain.Selection{KeysParam: "id"}}}},
			errMissingParameter,
		},
		{"bad bucket", "bad`name", domain.Statement{From: &domain.Selection{}}, errInvalidName},
		{
			"bad field", "b",
			domain.Statement{
				From:   &domain.Selection{Where: []domain.Predicate{{Field: "x` OR 1=1", Param: "p"}}},
				Params: map[string]interface{}{"p": 1},
			},
			errInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Render(tt.bucket, tt.stmt)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
