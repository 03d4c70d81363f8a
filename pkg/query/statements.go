package query

import "github.com/adfharrison1/docgate/pkg/domain"

// Parameter names used by the composed statements.
const (
	ParamType       = "type"
	ParamCustomerID = "customerid"
	ParamProductIDs = "productids"
)

// ByType selects every document whose type discriminator equals docType.
func ByType(docType string) domain.Statement {
	return domain.Statement{
		From: &domain.Selection{
			Alias: "d",
			Where: []domain.Predicate{{Field: domain.FieldType, Param: ParamType}},
		},
		Params: map[string]interface{}{ParamType: docType},
	}
}

// JoinByKeys selects one customer and a set of products by key in a single
// statement. A missing customer leaves the customer field out of the row and
// missing products are skipped.
func JoinByKeys(customerID string, productIDs []string) domain.Statement {
	keys := make([]string, len(productIDs))
	copy(keys, productIDs)
	return domain.Statement{
		Fields: []domain.Field{
			{
				Name:      domain.FieldCustomer,
				Selection: domain.Selection{Alias: "c", KeysParam: ParamCustomerID, First: true},
			},
			{
				Name:      domain.FieldProducts,
				Selection: domain.Selection{Alias: "p", KeysParam: ParamProductIDs},
			},
		},
		Params: map[string]interface{}{
			ParamCustomerID: customerID,
			ParamProductIDs: keys,
		},
	}
}
