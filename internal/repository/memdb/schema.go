package memdb

import (
	"github.com/hashicorp/go-memdb"
)

const (
	tableUsers       = "users"
	tableBusinesses  = "businesses"
	tableStores      = "stores"
	tableProducts    = "products"
	tableInventories = "inventories"
	tableOrders      = "orders"
	tableSessions    = "sessions"
)

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:    "id",
		Unique:  true,
		Indexer: &memdb.StringFieldIndex{Field: "ID"},
	}
}

func fieldIndex(name, field string, allowMissing bool) *memdb.IndexSchema {
	return &memdb.IndexSchema{
		Name:         name,
		AllowMissing: allowMissing,
		Indexer:      &memdb.StringFieldIndex{Field: field},
	}
}

// schema mirrors the MySQL tables. go-memdb does not reject duplicates on
// secondary indexes, so uniqueness beyond the id is checked by the repositories.
func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					"id":    idIndex(),
					"email": fieldIndex("email", "Email", false),
					"store": fieldIndex("store", "StoreID", true),
				},
			},
			tableBusinesses: {
				Name: tableBusinesses,
				Indexes: map[string]*memdb.IndexSchema{
					"id":    idIndex(),
					"owner": fieldIndex("owner", "OwnerID", false),
				},
			},
			tableStores: {
				Name: tableStores,
				Indexes: map[string]*memdb.IndexSchema{
					"id":       idIndex(),
					"business": fieldIndex("business", "BusinessID", false),
				},
			},
			tableProducts: {
				Name: tableProducts,
				Indexes: map[string]*memdb.IndexSchema{
					"id": idIndex(),
				},
			},
			tableInventories: {
				Name: tableInventories,
				Indexes: map[string]*memdb.IndexSchema{
					"id":      idIndex(),
					"product": fieldIndex("product", "ProductID", false),
					"store":   fieldIndex("store", "StoreID", false),
					"product_store": {
						Name:   "product_store",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "ProductID"},
								&memdb.StringFieldIndex{Field: "StoreID"},
							},
						},
					},
				},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					"id":          idIndex(),
					"store":       fieldIndex("store", "StoreID", false),
					"cashier":     fieldIndex("cashier", "CashierID", true),
					"idempotency": fieldIndex("idempotency", "IdempotencyKey", true),
				},
			},
			tableSessions: {
				Name: tableSessions,
				Indexes: map[string]*memdb.IndexSchema{
					"id":      idIndex(),
					"code":    fieldIndex("code", "SessionCode", false),
					"cashier": fieldIndex("cashier", "CashierID", false),
				},
			},
		},
	}
}
